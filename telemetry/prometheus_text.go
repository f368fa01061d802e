package telemetry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RenderPrometheusText produces the bit-exact exposition format described
// in §4.7/§6: "# HELP"/"# TYPE" preamble per metric name, then
// counter/gauge as "name{labels} value", histogram as
// "name_bucket{...,le=\"bound\"} count" plus "_sum"/"_count", and summary
// as "name{...,quantile=\"q\"} value" plus "_sum"/"_count".
func RenderPrometheusText(snapshots []Snapshot) string {
	byName := map[string][]Snapshot{}
	order := []string{}
	for _, s := range snapshots {
		if _, seen := byName[s.Name]; !seen {
			order = append(order, s.Name)
		}
		byName[s.Name] = append(byName[s.Name], s)
	}
	sort.Strings(order)

	var b strings.Builder
	for _, name := range order {
		group := byName[name]
		help := group[0].Help
		kind := group[0].Kind

		fmt.Fprintf(&b, "# HELP %s %s\n", name, help)
		fmt.Fprintf(&b, "# TYPE %s %s\n", name, kind)

		for _, s := range group {
			switch s.Kind {
			case KindCounter, KindGauge:
				fmt.Fprintf(&b, "%s%s %s\n", name, renderLabels(s.Labels, nil), formatFloat(s.Value))
			case KindHistogram:
				bounds := append([]float64{}, s.BucketBounds...)
				sort.Float64s(bounds)
				for _, u := range bounds {
					extra := map[string]string{"le": formatFloat(u)}
					fmt.Fprintf(&b, "%s_bucket%s %d\n", name, renderLabels(s.Labels, extra), s.BucketCounts[u])
				}
				fmt.Fprintf(&b, "%s_sum%s %s\n", name, renderLabels(s.Labels, nil), formatFloat(s.Sum))
				fmt.Fprintf(&b, "%s_count%s %d\n", name, renderLabels(s.Labels, nil), s.Count)
			case KindSummary:
				quantiles := make([]float64, 0, len(s.Quantiles))
				for q := range s.Quantiles {
					quantiles = append(quantiles, q)
				}
				sort.Float64s(quantiles)
				for _, q := range quantiles {
					extra := map[string]string{"quantile": formatFloat(q)}
					fmt.Fprintf(&b, "%s%s %s\n", name, renderLabels(s.Labels, extra), formatFloat(s.Quantiles[q]))
				}
				fmt.Fprintf(&b, "%s_sum%s %s\n", name, renderLabels(s.Labels, nil), formatFloat(s.Sum))
				fmt.Fprintf(&b, "%s_count%s %d\n", name, renderLabels(s.Labels, nil), s.Count)
			}
		}
	}
	return b.String()
}

func renderLabels(labels Labels, extra map[string]string) string {
	if len(labels) == 0 && len(extra) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels)+len(extra))
	all := map[string]string{}
	for k, v := range labels {
		all[k] = v
		keys = append(keys, k)
	}
	for k, v := range extra {
		if _, exists := all[k]; !exists {
			keys = append(keys, k)
		}
		all[k] = v
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, all[k]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
