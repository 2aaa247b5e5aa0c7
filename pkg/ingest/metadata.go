package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/quorum/pkg/types"
)

// SidecarSuffix is appended to a document path to locate its metadata
// sidecar, e.g. cab_minutes_2021.pdf.meta.yaml.
const SidecarSuffix = ".meta.yaml"

var yearRe = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// committeeCodes are the committee abbreviations that appear in filenames.
var committeeCodes = []string{"CAB", "CAPP", "CFS", "COA", "COR", "CORGE", "CSA", "GEC", "SEC"}

// fileTypeKeywords maps filename fragments to file types, longest match
// first so "final report" is not shadowed by "report".
var fileTypeKeywords = []struct {
	fragment string
	fileType string
}{
	{"final report", "report"},
	{"final_report", "report"},
	{"minutes", "minutes"},
	{"resolution", "resolution"},
	{"agenda", "agenda"},
	{"report", "report"},
}

// InferMetadata derives metadata from a document's filename and content,
// then applies any sidecar overrides. Sidecar values win over inference.
func InferMetadata(path, text string) (types.Metadata, error) {
	meta := inferFromName(filepath.Base(path))

	if meta.Year == 0 {
		if m := yearRe.FindString(text); m != "" {
			meta.Year, _ = strconv.Atoi(m)
		}
	}

	if err := applySidecar(path, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

func inferFromName(name string) types.Metadata {
	meta := types.Metadata{}
	lower := strings.ToLower(name)

	if m := yearRe.FindString(name); m != "" {
		meta.Year, _ = strconv.Atoi(m)
	}

	for _, kw := range fileTypeKeywords {
		if strings.Contains(lower, kw.fragment) {
			meta.FileType = kw.fileType
			break
		}
	}

	for _, season := range []string{"fall", "spring", "summer"} {
		if strings.Contains(lower, season) {
			meta.Semester = strings.ToUpper(season[:1]) + season[1:]
			if meta.Year != 0 {
				meta.Semester = fmt.Sprintf("%s %d", meta.Semester, meta.Year)
			}
			break
		}
	}

	upper := strings.ToUpper(name)
	tokens := strings.FieldsFunc(upper, func(r rune) bool {
		return !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9')
	})
	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}
	for _, code := range committeeCodes {
		if tokenSet[code] {
			meta.CommitteeCodes = append(meta.CommitteeCodes, code)
		}
	}
	if tokenSet["MFS"] {
		meta.BodyCode = "MFS"
	}

	meta.Draft = strings.Contains(lower, "draft")
	return meta
}

// applySidecar merges a <path>.meta.yaml file into meta. Missing sidecars
// are not an error; unreadable or malformed ones are.
func applySidecar(path string, meta *types.Metadata) error {
	data, err := os.ReadFile(path + SidecarSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading metadata sidecar: %w", err)
	}

	override := types.Metadata{}
	if err := yaml.Unmarshal(data, &override); err != nil {
		return fmt.Errorf("parsing metadata sidecar %s: %w", path+SidecarSuffix, err)
	}

	if override.Title != "" {
		meta.Title = override.Title
	}
	if override.Year != 0 {
		meta.Year = override.Year
	}
	if override.Semester != "" {
		meta.Semester = override.Semester
	}
	if override.Month != "" {
		meta.Month = override.Month
	}
	if override.FullDate != "" {
		meta.FullDate = override.FullDate
	}
	if len(override.CommitteeCodes) > 0 {
		meta.CommitteeCodes = override.CommitteeCodes
	}
	if override.BodyCode != "" {
		meta.BodyCode = override.BodyCode
	}
	if override.FileType != "" {
		meta.FileType = override.FileType
	}
	if override.Stance != "" {
		meta.Stance = override.Stance
	}
	if override.Topic != "" {
		meta.Topic = override.Topic
	}
	if override.Status != "" {
		meta.Status = override.Status
	}
	if override.ActionType != "" {
		meta.ActionType = override.ActionType
	}
	if override.Link != "" {
		meta.Link = override.Link
	}
	if override.Draft {
		meta.Draft = true
	}
	return nil
}
