// Package data loads chart series from CSV streams. Files are tailed
// while they grow, so a chart can follow a recording in progress, and
// sessions are published through skel streams so the UI goroutine
// always receives a wholesale-replaced series rather than sharing a
// mutating one.
package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"github.com/fsnotify/fsnotify"

	"git.sr.ht/~whereswaldon/zoomchart/series"
)

// Session is one loaded data stream and its current series snapshot.
// Every emission carries a fresh *series.Series; consumers may hold the
// previous snapshot as long as they like without racing the loader.
type Session struct {
	ID     string
	Series *series.Series
	Err    error
}

// Source loads and tails CSV point streams.
type Source struct {
	pool    *stream.MutationPool[string, Session]
	watcher *fsnotify.Watcher
	appCtx  context.Context
}

// NewSource constructs a Source whose sessions live until appCtx ends.
func NewSource(appCtx context.Context, mutator *stream.Mutator) (*Source, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	return &Source{
		pool:    stream.NewMutationPool[string, Session](mutator),
		watcher: watcher,
		appCtx:  appCtx,
	}, nil
}

// SessionStream emits the set of live sessions whenever it changes.
func (d *Source) SessionStream(ctx context.Context) <-chan map[string]*stream.Mutation[Session] {
	return d.pool.Stream(ctx)
}

// LatestSessionStream emits updates for the most recently started
// session, switching over whenever a newer session begins. Session IDs
// are UTC timestamps, so lexical order is chronological.
func (d *Source) LatestSessionStream(ctx context.Context) <-chan Session {
	return stream.Multiplex(d.pool.Stream(ctx), func(ctx context.Context, state string, mutations map[string]*stream.Mutation[Session]) (<-chan Session, string) {
		latest := ""
		var mut *stream.Mutation[Session]
		for id, m := range mutations {
			if id > latest {
				latest, mut = id, m
			}
		}
		if mut == nil || latest == state {
			return nil, state
		}
		return mut.Stream(ctx), latest
	})
}

func generateSessionID() string {
	return strings.Replace(time.Now().UTC().Format("20060102150405.000000000"), ".", "", 1)
}

// LoadFromFile prompts for a file with the explorer and begins loading
// it, returning the new session's ID.
func (d *Source) LoadFromFile(expl *explorer.Explorer) (string, error) {
	file, err := expl.ChooseFile()
	if err != nil {
		return "", err
	}
	return d.LoadFromStream(file), nil
}

// LoadFromStream begins loading the given readers into one session.
func (d *Source) LoadFromStream(files ...io.ReadCloser) string {
	id := generateSessionID()
	d.record(id, files...)
	return id
}

func (d *Source) record(sessionID string, files ...io.ReadCloser) {
	stream.Mutate(d.pool, sessionID, func(ctx context.Context) <-chan Session {
		out := make(chan Session, 1)
		go func() {
			defer close(out)
			session := Session{
				ID:     sessionID,
				Series: series.NewSeries(sessionID),
			}
			// Emit the empty session immediately so the UI can show it.
			out <- session

			points := make(chan series.Point, 1024)
			for _, file := range files {
				if f, ok := file.(interface{ Name() string }); ok {
					d.watcher.Add(f.Name())
				}
				go d.readSource(file, points)
			}

			var buf []series.Point
			for {
				select {
				case <-ctx.Done():
					return
				case p := <-points:
					buf = append(buf, p)
					// Fold in whatever else already arrived before
					// publishing a snapshot.
				drain:
					for {
						select {
						case p := <-points:
							buf = append(buf, p)
						default:
							break drain
						}
					}
					snapshot := series.NewSeries(sessionID)
					snapshot.Points = append([]series.Point(nil), buf...)
					session.Series = snapshot
					out <- session
				}
			}
		}()
		return out
	})
}

// readSource parses CSV rows of the form x, y[, size]. A leading
// non-numeric row is treated as headings and skipped, malformed rows
// are logged and skipped, and io.EOF suspends parsing until the watcher
// reports the backing file grew.
func (d *Source) readSource(source io.ReadCloser, points chan series.Point) {
	defer source.Close()
	csvReader := csv.NewReader(NewLineReader(source))
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	first := true
readLoop:
	for {
		rec, err := csvReader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				for ev := range d.watcher.Events {
					if ev.Op == fsnotify.Write {
						continue readLoop
					}
				}
			}
			log.Printf("could not read series data: %v", err)
			return
		}
		p, err := parsePoint(rec)
		if err != nil {
			if !first {
				log.Printf("skipping row: %v", err)
			}
			// A malformed first row is assumed to be headings.
			first = false
			continue
		}
		first = false
		points <- p
	}
}

// parsePoint converts one CSV record of x, y[, size] into a point. An
// empty size cell yields a point without a magnitude rather than a
// zero one.
func parsePoint(rec []string) (series.Point, error) {
	if len(rec) < 2 {
		return series.Point{}, fmt.Errorf("row has %d cells, need at least 2", len(rec))
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	if err != nil {
		return series.Point{}, fmt.Errorf("failed parsing x %q: %w", rec[0], err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return series.Point{}, fmt.Errorf("failed parsing y %q: %w", rec[1], err)
	}
	p := series.Point{X: x, Y: y}
	if len(rec) > 2 {
		if cell := strings.TrimSpace(rec[2]); len(cell) > 0 {
			size, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return series.Point{}, fmt.Errorf("failed parsing size %q: %w", rec[2], err)
			}
			p.Size = size
			p.HasSize = true
		}
	}
	return p, nil
}
