package sources

import (
	"context"

	"github.com/kerbaras/pocketdl/pkg/data"
)

type Source interface {
	VerifyAuth(ctx context.Context) error
	Starred(ctx context.Context) ([]data.Episode, error)
	Episode(ctx context.Context, uuid string) (*data.Episode, error)
	ArtworkURL(podcastID string) string
}
