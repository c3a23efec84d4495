package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mealforge/mealforge/genstream"
	"github.com/mealforge/mealforge/pkg/logging"
	"github.com/mealforge/mealforge/recipe"
	"github.com/mealforge/mealforge/search"
)

// RunFunc streams the raw model text of one generation, calling emit for
// each text chunk as it arrives. Vendor packages bind this to their SDK.
type RunFunc func(ctx context.Context, system, user string, emit func(text string) error) error

// Bridge implements genstream.Transport on top of a vendor token stream.
// The model is instructed to emit the generation event protocol, one JSON
// object per line; the bridge reframes each complete line as a wire record.
//
// The bearer token passed to Open is ignored: local bridges authenticate
// with their own vendor API key.
type Bridge struct {
	Run RunFunc

	// Search and ReferenceURL enable prompt enrichment from an external
	// recipe page when the request allows web search.
	Search       *search.Client
	ReferenceURL string
}

// Open starts the model stream and returns the reframed record stream. A
// vendor failure mid-stream is folded into an error record so consumers see
// the single protocol error path.
func (b *Bridge) Open(ctx context.Context, req *recipe.GenerationRequest, _ string) (io.ReadCloser, error) {
	if b.Run == nil {
		return nil, fmt.Errorf("provider bridge has no run function")
	}
	logger := logging.WithComponent("provider")
	pr, pw := io.Pipe()

	go func() {
		writeEvent(pw, map[string]any{"type": "status", "message": "Generating your recipe..."})

		var page *search.Result
		if req.AllowWebSearch && b.Search != nil && b.ReferenceURL != "" {
			writeEvent(pw, map[string]any{
				"type":  "tool_started",
				"tool":  "web_search",
				"title": "Searching recipes on the web",
			})
			var err error
			page, err = b.Search.FetchPage(ctx, b.ReferenceURL)
			if err != nil {
				logger.Warn("web search failed, continuing without it", "error", err)
				page = nil
			}
			writeEvent(pw, map[string]any{"type": "tool_completed", "tool": "web_search"})
		}

		system, user := BuildPrompt(req, page)

		var dec genstream.Decoder
		emit := func(text string) error {
			for _, line := range dec.Feed([]byte(text)) {
				if err := writeLine(pw, line); err != nil {
					return err
				}
			}
			return nil
		}
		err := b.Run(ctx, system, user, emit)
		if err == nil {
			err = writeLine(pw, dec.Tail())
		}
		if err != nil {
			writeEvent(pw, map[string]any{"type": "error", "message": err.Error()})
		}
		pw.Close()
	}()

	return pr, nil
}

// writeLine frames one line of model output as a record, skipping blanks
// and markdown fences the model may wrap its output in.
func writeLine(w io.Writer, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "```") {
		return nil
	}
	_, err := io.WriteString(w, genstream.RecordPrefix+line+"\n")
	return err
}

func writeEvent(w io.Writer, event map[string]any) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	io.WriteString(w, genstream.RecordPrefix+string(data)+"\n")
}
