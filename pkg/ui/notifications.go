package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Notifier sends desktop notifications for long-running operations so the
// user can background the terminal. Platforms without a known notification
// command fall back to console output only.
type Notifier struct {
	send func(title, message string) error
}

// NewNotifier picks the notification mechanism for the current platform.
func NewNotifier() *Notifier {
	switch runtime.GOOS {
	case "linux":
		return &Notifier{send: notifyLinux}
	case "darwin":
		return &Notifier{send: notifyMacOS}
	case "windows":
		return &Notifier{send: notifyWindows}
	default:
		return &Notifier{}
	}
}

// SendNotification prints the message and raises a desktop notification
// where supported. Notification failures are ignored.
func (n *Notifier) SendNotification(title, message string) {
	fmt.Printf("\n%s: %s\n", Cyan(title), Yellow(message))
	if n.send != nil {
		_ = n.send(title, message)
	}
}

// SendError prints and notifies about a failure.
func (n *Notifier) SendError(title, message string) {
	fmt.Printf("\n%s: %s\n", Red(title), Red(message))
	if n.send != nil {
		_ = n.send(title, message)
	}
}

// SendSuccess prints and notifies about a completed run.
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Printf("\n%s: %s\n", Green(title), Green(message))
	if n.send != nil {
		_ = n.send(title, message)
	}
}

func notifyLinux(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

func notifyMacOS(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

func notifyWindows(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("VSCO Scraper").Show($toast)
	`, title, message)

	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}
