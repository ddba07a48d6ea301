// Package gamedata downloads the upstream gamemaster and merges its parts into
// the single document catalog.LoadGamemaster reads.
package gamedata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/pvp-damage/internal/config"
	"github.com/cory-johannsen/pvp-damage/internal/game/catalog"
)

// Upstream keeps species and moves out of base.json.
const (
	baseFile    = "base.json"
	pokemonFile = "pokemon.json"
	movesFile   = "moves.json"
)

// Fetcher downloads gamemaster parts from a base URL.
type Fetcher struct {
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

// NewFetcher creates a Fetcher for cfg.BaseURL with cfg.Timeout per request.
func NewFetcher(cfg config.FetchConfig, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger,
	}
}

// Fetch downloads the three parts concurrently and returns the merged document:
// base.json with its "pokemon" and "moves" keys replaced by the other two files.
//
// Postcondition: The result decodes with catalog.DecodeGamemaster, or an error is returned.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	var base, pokemon, moves []byte
	g, ctx := errgroup.WithContext(ctx)
	for name, dst := range map[string]*[]byte{baseFile: &base, pokemonFile: &pokemon, movesFile: &moves} {
		g.Go(func() error {
			body, err := f.get(ctx, name)
			if err != nil {
				return err
			}
			*dst = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	doc, err := Merge(base, pokemon, moves)
	if err != nil {
		return nil, err
	}
	c, err := catalog.DecodeGamemaster(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("validating merged gamemaster: %w", err)
	}
	f.logger.Info("gamemaster fetched",
		zap.Int("bytes", len(doc)),
		zap.Int("species", c.SpeciesCount()),
		zap.Int("fast_moves", c.FastMoveCount()),
		zap.Int("charged_moves", c.ChargedMoveCount()),
	)
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	url := f.baseURL + "/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", name, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	f.logger.Debug("downloaded",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return body, nil
}

// Merge sets base's "pokemon" and "moves" keys to the given arrays and returns
// the indented document. Other base keys pass through unchanged.
func Merge(base, pokemon, moves []byte) ([]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(base, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", baseFile, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("parsing %s: not a JSON object", baseFile)
	}
	for name, part := range map[string][]byte{pokemonFile: pokemon, movesFile: moves} {
		var arr []json.RawMessage
		if err := json.Unmarshal(part, &arr); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
	}
	doc["pokemon"] = pokemon
	doc["moves"] = moves
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding gamemaster: %w", err)
	}
	return out, nil
}

// WriteFile writes doc to path through a temporary file in the same directory,
// so readers never see a partial gamemaster.
func WriteFile(path string, doc []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gamemaster-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
