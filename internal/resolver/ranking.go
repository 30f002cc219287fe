package resolver

import (
	"sort"
	"strconv"
	"strings"

	"socialdl/internal/model"
)

// QualityRank returns the leading integer of a quality label ("720p" is 720,
// "1080p60" is 1080) or 0 when the label does not start with a number.
func QualityRank(label string) int {
	label = strings.TrimSpace(label)
	end := 0
	for end < len(label) && label[end] >= '0' && label[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(label[:end])
	if err != nil {
		return 0
	}
	return n
}

// SortByQuality orders formats best-first by QualityRank. The sort is
// stable, so unranked labels keep their source order after ranked ones.
func SortByQuality(formats []model.MediaFormat) {
	sort.SliceStable(formats, func(i, j int) bool {
		return QualityRank(formats[i].Quality) > QualityRank(formats[j].Quality)
	})
}
