// Command vscoscraper downloads full-resolution media from public VSCO
// profiles. See the download subcommand for the main entry point.
package main

func main() {
	Execute()
}
