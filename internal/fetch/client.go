package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client copies input objects onto the shared filesystem mounted at Root
// and publishes rendered files back to the store.
type Client struct {
	Store ObjectStore
	Root  string
}

func NewClient(store ObjectStore, root string) *Client {
	return &Client{Store: store, Root: root}
}

// Fetch downloads the object at uri into Root. A zip archive is expanded into Root
// and the first scene file in it is selected. The returned name is relative to Root.
func (c *Client) Fetch(ctx context.Context, uri string) (string, error) {
	log := zerolog.Ctx(ctx)
	loc, err := ParseURI(uri)
	if err != nil {
		return "", err
	}
	name := loc.Name()
	dst, err := Resolve(c.Root, name)
	if err != nil {
		return "", err
	}
	n, err := c.download(ctx, loc, dst)
	if err != nil {
		return "", err
	}
	log.Info().Str("uri", uri).Str("file", dst).Int64("bytes", n).Msg("downloaded input")

	isZip, err := IsArchive(dst)
	if err != nil {
		return "", err
	}
	if !isZip {
		return name, nil
	}

	entries, err := Extract(dst, c.Root)
	if err != nil {
		return "", err
	}
	scene, ok := FirstScene(entries)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSceneFile, loc)
	}
	log.Info().Str("archive", name).Int("entries", len(entries)).Str("scene", scene).Msg("extracted input archive")
	return scene, nil
}

// download writes the object next to dst under a unique name and renames it into place.
func (c *Client) download(ctx context.Context, loc Location, dst string) (int64, error) {
	tmp := fmt.Sprintf("%s.%s.part", dst, uuid.NewString())
	fh, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	n, err := c.Store.Download(ctx, loc, fh)
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return n, nil
}

// Publish uploads the local file to uri.
func (c *Client) Publish(ctx context.Context, file, uri string) error {
	loc, err := ParseURI(uri)
	if err != nil {
		return err
	}
	fh, err := os.Open(file)
	if err != nil {
		return err
	}
	defer fh.Close()
	if err := c.Store.Upload(ctx, loc, fh); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("file", filepath.Base(file)).Str("uri", uri).Msg("published output")
	return nil
}
