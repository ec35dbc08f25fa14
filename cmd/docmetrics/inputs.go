package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nao1215/docmetrics/internal/config"
	"github.com/nao1215/docmetrics/internal/crawler"
	"github.com/nao1215/docmetrics/internal/fetch"
	"github.com/nao1215/docmetrics/internal/pipeline"
)

// errNoLinks is reported for a followed page without document links.
var errNoLinks = errors.New("page links to no DOCX documents")

// resolveInputs turns cfg.Inputs into batch inputs. With FollowLinks each
// URL is downloaded up front, and an HTML page is replaced by the DOCX
// documents it links to.
func resolveInputs(ctx context.Context, cfg *config.Config, fetcher *fetch.Fetcher, logger *slog.Logger) []pipeline.Input {
	inputs := make([]pipeline.Input, 0, len(cfg.Inputs))
	for _, in := range cfg.Inputs {
		if !cfg.FollowLinks || !isURL(in) {
			inputs = append(inputs, newInput(in, fetcher, cfg))
			continue
		}

		c, err := fetcher.URL(ctx, in, cfg.MaxUploadBytes, cfg.Timeout)
		if err != nil {
			inputs = append(inputs, failedInput(in, err))
			continue
		}
		if !c.IsHTML() {
			inputs = append(inputs, loadedInput(in, c.Data))
			continue
		}

		links, err := crawler.DocumentLinks(bytes.NewReader(c.Data), in, crawler.WithMaxLinks(cfg.MaxLinks))
		switch {
		case err != nil:
			inputs = append(inputs, failedInput(in, err))
		case len(links) == 0:
			inputs = append(inputs, failedInput(in, errNoLinks))
		default:
			logger.Info("following document links", "page", in, "links", len(links))
			for _, link := range links {
				inputs = append(inputs, newInput(link, fetcher, cfg))
			}
		}
	}
	return inputs
}

func loadedInput(name string, data []byte) pipeline.Input {
	return pipeline.Input{
		Name: name,
		Open: func(context.Context) ([]byte, error) { return data, nil },
	}
}

func failedInput(name string, err error) pipeline.Input {
	return pipeline.Input{
		Name: name,
		Open: func(context.Context) ([]byte, error) { return nil, err },
	}
}

// newInput creates a batch input that reads a local file or downloads a
// URL when the worker picks it up.
func newInput(in string, fetcher *fetch.Fetcher, cfg *config.Config) pipeline.Input {
	if isURL(in) {
		return pipeline.Input{
			Name: in,
			Open: func(ctx context.Context) ([]byte, error) {
				c, err := fetcher.URL(ctx, in, cfg.MaxUploadBytes, cfg.Timeout)
				if err != nil {
					return nil, err
				}
				return c.Data, nil
			},
		}
	}
	return pipeline.Input{
		Name: in,
		Open: func(context.Context) ([]byte, error) {
			c, err := fetch.File(in, cfg.MaxUploadBytes)
			if err != nil {
				return nil, err
			}
			return c.Data, nil
		},
	}
}

// isURL reports whether in should be downloaded rather than opened.
func isURL(in string) bool {
	lower := strings.ToLower(in)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}
