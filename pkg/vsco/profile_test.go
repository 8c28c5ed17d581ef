package vsco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const galleryHTML = `
<html>
<body>
  <main class="gallery">
    <a href="/erinchristine/media/aaa111"><img src="//im.vsco.co/1/erin/aaa111.jpg?w=480"></a>
    <a href="/erinchristine/media/bbb222"><video poster="//im.vsco.co/1/erin/bbb222.jpg"></video></a>
    <a href="/erinchristine/media/ccc333"><div class="thumbnail video-overlay"></div></a>
    <a href="/erinchristine/media/ddd444"><img src="//im.vsco.co/1/erin/ddd444.jpg?w=480"></a>
    <a href="/erinchristine/media/aaa111"><img src="//im.vsco.co/1/erin/aaa111.jpg?w=300"></a>
    <a href="/someoneelse/media/zzz999"><img src="//im.vsco.co/1/other/zzz999.jpg"></a>
    <a href="/erinchristine/media/"><img src="//im.vsco.co/1/erin/broken.jpg"></a>
    <a href="/erinchristine/collection">Collection</a>
  </main>
</body>
</html>`

func TestParseGalleryOrderAndDedupe(t *testing.T) {
	entries := ParseGallery(galleryHTML, "erinchristine")
	require.Len(t, entries, 4)

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"aaa111", "bbb222", "ccc333", "ddd444"}, ids)
}

func TestParseGalleryAbsolutizesPageURLs(t *testing.T) {
	entries := ParseGallery(galleryHTML, "erinchristine")
	require.NotEmpty(t, entries)

	assert.Equal(t, "https://vsco.co/erinchristine/media/aaa111", entries[0].PageURL)
}

func TestParseGalleryDetectsVideos(t *testing.T) {
	entries := ParseGallery(galleryHTML, "erinchristine")
	require.Len(t, entries, 4)

	assert.False(t, entries[0].IsVideo, "plain image flagged as video")
	assert.True(t, entries[1].IsVideo, "video element not detected")
	assert.True(t, entries[2].IsVideo, "video class not detected")
	assert.False(t, entries[3].IsVideo)
}

func TestParseGalleryFiltersForeignProfiles(t *testing.T) {
	entries := ParseGallery(galleryHTML, "erinchristine")
	for _, e := range entries {
		assert.NotEqual(t, "zzz999", e.ID, "link into another profile should be dropped")
	}

	// without a username there is nothing to filter against
	all := ParseGallery(galleryHTML, "")
	assert.Len(t, all, 5)
}

func TestParseGalleryEmptyDocument(t *testing.T) {
	assert.Empty(t, ParseGallery("<html><body></body></html>", "erinchristine"))
}

func TestToWorkItems(t *testing.T) {
	entries := []ProfileMedia{
		{ID: "aaa111", PageURL: "https://vsco.co/erin/media/aaa111", IsVideo: false},
		{ID: "bbb222", PageURL: "https://vsco.co/erin/media/bbb222", IsVideo: true},
	}

	items := ToWorkItems(entries)
	require.Len(t, items, 2)

	assert.Equal(t, "aaa111", items[0].ID)
	assert.Equal(t, "https://vsco.co/erin/media/aaa111", items[0].SourceURL)
	assert.Equal(t, 0, items[0].Info.Index)
	assert.False(t, items[0].Info.IsVideo)

	assert.Equal(t, "bbb222", items[1].ID)
	assert.Equal(t, 1, items[1].Info.Index)
	assert.True(t, items[1].Info.IsVideo)
}
