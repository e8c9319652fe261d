package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-loan-dashboard/components/dashboard"
	"github.com/goliatone/go-loan-dashboard/components/dashboard/commands"
)

// writeStructured prints v as JSON or YAML. YAML goes through the JSON form so
// both formats share the snake_case keys of the JSON tags.
func writeStructured(out io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("loandash: encode output: %w", err)
		}
		var doc any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("loandash: encode output: %w", err)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("loandash: encode output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("loandash: unsupported format %q", format)
	}
}

// snapshotDocument keys each view by its route slug.
func snapshotDocument(snapshot commands.Snapshot) map[string]any {
	doc := make(map[string]any, len(snapshot))
	for id, view := range snapshot {
		doc[id.Slug()] = view
	}
	return doc
}

func writeLeadTable(out io.Writer, view dashboard.LeadScoringView) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSCORE\tURGENCY\tAMOUNT\tTYPE\tSTAGE\tCREDIT")
	for _, row := range view.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.ID, row.Name, row.Score, row.Urgency, row.LoanAmount, row.LoanType, row.Stage, row.Credit)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cards := make([]string, len(view.Cards))
	for i, card := range view.Cards {
		cards[i] = card.Title + ": " + card.Value
	}
	_, err := fmt.Fprintf(out, "\n%s\n%s\n", view.Showing, strings.Join(cards, " | "))
	return err
}

func writePipelineTable(out io.Writer, pipeline dashboard.PipelineStages) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tCOUNT\tVALUE\tAVG DAYS")
	for _, stage := range pipeline.Stages {
		fmt.Fprintf(w, "%s\t%d\t%s\t%g\n", stage.Name, stage.Count, dashboard.FormatCurrency(stage.Value), stage.AvgDays)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	keys := make([]string, 0, len(pipeline.ConversionRates))
	for key := range pipeline.ConversionRates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fmt.Fprintln(out)
	for _, key := range keys {
		fmt.Fprintf(out, "%s: %s\n", key, dashboard.FormatPercent(pipeline.ConversionRates[key]))
	}
	if len(pipeline.Bottlenecks) > 0 {
		fmt.Fprintf(out, "bottlenecks: %s\n", strings.Join(pipeline.Bottlenecks, ", "))
	}
	_, err := fmt.Fprintf(out, "total pipeline value: %s\n", dashboard.FormatCurrency(pipeline.TotalPipelineValue))
	return err
}
