package vsco

import "vscoscraper/pkg/models"

// ProfileMedia is one media entry discovered in a user's gallery, in the
// order the gallery renders them.
type ProfileMedia struct {
	ID      string
	PageURL string
	IsVideo bool
}

// ToWorkItems converts gallery entries into the downloader's work queue,
// preserving gallery order.
func ToWorkItems(media []ProfileMedia) []models.WorkItem {
	items := make([]models.WorkItem, 0, len(media))
	for i, m := range media {
		items = append(items, models.WorkItem{
			ID:        m.ID,
			SourceURL: m.PageURL,
			Info: models.MediaInfo{
				Index:   i,
				IsVideo: m.IsVideo,
			},
		})
	}
	return items
}
