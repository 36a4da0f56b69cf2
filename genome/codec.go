package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// Fallback values for malformed or missing numeric fields in the text form.
const (
	DefaultSize       = 5.0
	DefaultEfficiency = 0.5
)

// Serialize renders the genome as concatenated records of the form
// (type,size,efficiency,+1,-2). The output round-trips through Parse.
func Serialize(g Genome) string {
	var sb strings.Builder
	for _, gene := range g {
		sb.WriteByte('(')
		sb.WriteString(gene.Type.String())
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(float64(gene.Size), 'g', -1, 32))
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatFloat(float64(gene.Efficiency), 'g', -1, 32))
		for _, off := range gene.Links {
			fmt.Fprintf(&sb, ",%+d", off)
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// Parse scans the text form back into a Genome. The codec is tolerant:
// unknown types become Neutral, malformed sizes and efficiencies take the
// defaults, and unreadable or zero offsets are skipped. Text containing no
// records parses to an empty genome, which body construction later rejects.
func Parse(s string) Genome {
	var g Genome
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open:], ')')
		if end < 0 {
			break
		}
		g = append(g, parseGene(s[open+1:open+end]))
		s = s[open+end+1:]
	}
	return g
}

func parseGene(record string) Gene {
	gene := Gene{Size: DefaultSize, Efficiency: DefaultEfficiency}
	fields := strings.Split(record, ",")

	gene.Type = ParseNodeType(strings.TrimSpace(fields[0]))
	if len(fields) > 1 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 32); err == nil && v > 0 {
			gene.Size = float32(v)
		}
	}
	if len(fields) > 2 {
		if v, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 32); err == nil && v > 0 && v <= 1 {
			gene.Efficiency = float32(v)
		}
	}
	if len(fields) > 3 {
		for _, f := range fields[3:] {
			off, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil || off == 0 {
				continue
			}
			gene.Links = append(gene.Links, off)
		}
	}
	return gene
}
