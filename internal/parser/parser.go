// Package parser reads and writes farm files: Markdown with YAML frontmatter.
package parser

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/harvest/internal/apperr"
	"github.com/starford/harvest/internal/models"
)

const delim = "---"

// frontmatter mirrors the YAML header of a farm file.
type frontmatter struct {
	Name          string   `yaml:"name,omitempty"`
	Title         string   `yaml:"title,omitempty"`
	Description   string   `yaml:"description,omitempty"`
	Distance      string   `yaml:"distance,omitempty"`
	Rating        float64  `yaml:"rating,omitempty"`
	Image         string   `yaml:"image,omitempty"`
	Tags          []string `yaml:"tags,omitempty"`
	Location      string   `yaml:"location,omitempty"`
	Contact       string   `yaml:"contact,omitempty"`
	DeliveryAreas []string `yaml:"delivery_areas,omitempty"`
}

// Parse builds a Farm from raw file bytes. Missing optional fields are left
// zero; a file without a usable name or with invalid frontmatter yields
// apperr.ErrMalformedFarm.
func Parse(data []byte) (*models.Farm, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	heading, text := splitHeading(body)

	name := firstNonEmpty(fm.Name, fm.Title, heading)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrMalformedFarm)
	}
	if math.IsNaN(fm.Rating) || fm.Rating < 0 || fm.Rating > 5 {
		return nil, fmt.Errorf("%w: rating %v outside 0-5", apperr.ErrMalformedFarm, fm.Rating)
	}

	return &models.Farm{
		Name:          name,
		Description:   firstNonEmpty(fm.Description, text),
		DistanceLabel: strings.TrimSpace(fm.Distance),
		Rating:        fm.Rating,
		ImageURL:      strings.TrimSpace(fm.Image),
		Tags:          cleanList(fm.Tags),
		Location:      strings.TrimSpace(fm.Location),
		Contact:       strings.TrimSpace(fm.Contact),
		DeliveryAreas: cleanList(fm.DeliveryAreas),
	}, nil
}

// Render encodes f as a farm file. The description becomes the body.
func Render(f models.Farm) ([]byte, error) {
	fm := frontmatter{
		Name:          f.Name,
		Distance:      f.DistanceLabel,
		Rating:        f.Rating,
		Image:         f.ImageURL,
		Tags:          f.Tags,
		Location:      f.Location,
		Contact:       f.Contact,
		DeliveryAreas: f.DeliveryAreas,
	}
	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("parser: encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(header)
	buf.WriteString(delim + "\n\n")
	buf.WriteString("# " + f.Name + "\n\n")
	if f.Description != "" {
		buf.WriteString(f.Description + "\n")
	}
	return buf.Bytes(), nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (frontmatter, string, error) {
	var fm frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter; treat everything as body.
		return fm, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return fm, "", fmt.Errorf("%w: frontmatter: %v", apperr.ErrMalformedFarm, err)
	}
	return fm, body, nil
}

// splitHeading returns the first H1 heading and the remaining body text.
func splitHeading(body string) (string, string) {
	var heading string
	var rest []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if heading == "" && strings.HasPrefix(trimmed, "# ") {
			heading = strings.TrimSpace(trimmed[2:])
			continue
		}
		rest = append(rest, line)
	}
	return heading, strings.TrimSpace(strings.Join(rest, "\n"))
}

// cleanList trims entries and drops empty ones and duplicates, keeping order.
func cleanList(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
