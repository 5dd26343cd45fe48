package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects a report rendering.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
	FormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat validates a format name from flags or config.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch OutputFormat(name) {
	case FormatText, FormatJSON, FormatCSV, FormatYAML:
		return OutputFormat(name), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format: %q (want text, json, csv, or yaml)", name)
	}
}

// WriteFingerprints renders fingerprint results in the requested format.
func WriteFingerprints(w io.Writer, results []FileFingerprint, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, results)
	case FormatYAML:
		return writeYAML(w, results)
	case FormatCSV:
		return writeFingerprintCSV(w, results)
	default:
		return writeFingerprintText(w, results)
	}
}

// WriteDedupReport renders a near-duplicate scan report in the requested
// format. CSV output contains the confirmed pairs only, one per row.
func WriteDedupReport(w io.Writer, report *DedupReport, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatYAML:
		return writeYAML(w, report)
	case FormatCSV:
		return writeDedupCSV(w, report)
	default:
		return writeDedupText(w, report)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

func writeFingerprintText(w io.Writer, results []FileFingerprint) error {
	for _, r := range results {
		if r.Err != "" {
			if _, err := fmt.Fprintf(w, "%s\terror: %s\n", r.Path, r.Err); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\tsimhash=%s\tsignature[%d]=%s\n",
			r.Path, r.SimhashHex(), len(r.Signature), signaturePreview(r.Signature)); err != nil {
			return err
		}
	}
	return nil
}

// signaturePreview keeps text output readable by showing the first few
// signature slots.
func signaturePreview(signature []uint64) string {
	const previewLen = 4
	var sb strings.Builder
	for i, v := range signature {
		if i == previewLen {
			sb.WriteString("...")
			break
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(v, 10))
	}
	return sb.String()
}

func writeFingerprintCSV(w io.Writer, results []FileFingerprint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "simhash", "signature", "error"}); err != nil {
		return err
	}
	for _, r := range results {
		sig := make([]string, len(r.Signature))
		for i, v := range r.Signature {
			sig[i] = strconv.FormatUint(v, 10)
		}
		row := []string{r.Path, r.SimhashHex(), strings.Join(sig, ";"), r.Err}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeDedupText(w io.Writer, report *DedupReport) error {
	if _, err := fmt.Fprintf(w, "Scanned %d files, %d near-duplicates\n",
		report.Scored, report.NearDups); err != nil {
		return err
	}
	if len(report.FailedFiles) > 0 {
		if _, err := fmt.Fprintf(w, "Skipped %d unreadable files\n", len(report.FailedFiles)); err != nil {
			return err
		}
	}

	if len(report.Pairs) > 0 {
		if _, err := fmt.Fprintln(w, "\nNear-duplicate pairs:"); err != nil {
			return err
		}
		for _, p := range report.Pairs {
			if _, err := fmt.Fprintf(w, "  %.3f\t%s\t%s\n", p.Similarity, p.ID1, p.ID2); err != nil {
				return err
			}
		}
	}

	if len(report.TopFamilies) > 0 {
		if _, err := fmt.Fprintln(w, "\nLargest duplicate families:"); err != nil {
			return err
		}
		for _, f := range report.TopFamilies {
			if _, err := fmt.Fprintf(w, "  %d members\t%s\t(e.g. %s)\n",
				f.Count, f.FamilyID, strings.Join(f.Examples, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeDedupCSV(w io.Writer, report *DedupReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id1", "id2", "similarity"}); err != nil {
		return err
	}
	for _, p := range report.Pairs {
		row := []string{p.ID1, p.ID2, strconv.FormatFloat(p.Similarity, 'f', 6, 64)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
