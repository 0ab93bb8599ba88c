package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/chrisedwards/slack-history/internal/slack"
)

// Write renders report to w in the given format: json, text, ndjson or csv.
func Write(w io.Writer, format string, report *Report, loc *time.Location) error {
	switch format {
	case "json", "":
		return writeJSON(w, report)
	case "text":
		return writeText(w, report, loc)
	case "ndjson":
		return writeNDJSON(w, report)
	case "csv":
		return writeCSV(w, report)
	}
	return errors.Errorf("unknown format %q", format)
}

// writeJSON prints one JSON array of message records per channel.
func writeJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	for _, ch := range report.Channels {
		messages := ch.Messages
		if messages == nil {
			messages = []slack.Message{}
		}
		if err := enc.Encode(messages); err != nil {
			return errors.Wrapf(err, "encode #%s", ch.Name)
		}
	}
	return nil
}

func writeText(w io.Writer, report *Report, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	for i, ch := range report.Channels {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "#%s (%s) %s .. %s\n", ch.Name, ch.ID,
			report.Window.Start.In(loc).Format(time.RFC3339),
			report.Window.End.In(loc).Format(time.RFC3339)); err != nil {
			return err
		}
		if len(ch.Messages) == 0 {
			if _, err := fmt.Fprintln(w, "(no messages)"); err != nil {
				return err
			}
			continue
		}
		for _, m := range ch.Messages {
			stamp := m.Timestamp
			if t, err := m.Time(); err == nil {
				stamp = t.In(loc).Format(time.RFC3339)
			}
			if _, err := fmt.Fprintf(w, "[%s] %s: %s\n", stamp, report.Users.Label(m.UserID), m.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// bulkIndex is the action line of an Elasticsearch bulk request.
type bulkIndex struct {
	Index bulkTarget `json:"index"`
}

type bulkTarget struct {
	ID    string `json:"_id"`
	Index string `json:"_index"`
}

// bulkDocument is the document line following each bulkIndex.
type bulkDocument struct {
	Channel  string        `json:"channel"`
	Datetime string        `json:"datetime"` // Unix seconds
	Message  slack.Message `json:"message"`
}

// BulkIndexName is the index used in ndjson output.
const BulkIndexName = "slack"

// writeNDJSON writes newline-delimited bulk-index pairs. The document ID is
// <channel>-<ts>, which is unique per message.
func writeNDJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, ch := range report.Channels {
		for _, m := range ch.Messages {
			action := bulkIndex{Index: bulkTarget{
				ID:    fmt.Sprintf("%s-%s", ch.Name, m.Timestamp),
				Index: BulkIndexName,
			}}
			if err := enc.Encode(action); err != nil {
				return errors.Wrap(err, "encode bulk action")
			}
			doc := bulkDocument{
				Channel:  ch.Name,
				Datetime: slack.UnixSeconds(m.Timestamp),
				Message:  m,
			}
			if err := enc.Encode(doc); err != nil {
				return errors.Wrap(err, "encode bulk document")
			}
		}
	}
	return nil
}

type csvRow struct {
	Channel   string `csv:"channel"`
	Timestamp string `csv:"timestamp"`
	UserID    string `csv:"user_id"`
	UserName  string `csv:"user_name"`
	Text      string `csv:"text"`
}

func writeCSV(w io.Writer, report *Report) error {
	rows := []*csvRow{}
	for _, ch := range report.Channels {
		for _, m := range ch.Messages {
			rows = append(rows, &csvRow{
				Channel:   ch.Name,
				Timestamp: m.Timestamp,
				UserID:    m.UserID,
				UserName:  report.Users.Label(m.UserID),
				Text:      m.Text,
			})
		}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return errors.Wrap(err, "encode csv")
	}
	return nil
}
