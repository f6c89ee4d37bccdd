package engine

import (
	"hash/fnv"

	"github.com/praxisgrid/veritas/internal/models"
)

// Winnowing parameters: k-gram length in tokens and the sliding window
// width in hashes. Guarantee: any token run of length kgramSize+windowSize-1
// shared between two streams yields at least one common fingerprint.
const (
	kgramSize  = 5
	windowSize = 4
)

// Fingerprint winnows a normalised token stream into its fingerprint set.
// Streams too short to fill a single k-gram or window produce an empty set.
func Fingerprint(tokens []string) models.FingerprintSet {
	fps := make(models.FingerprintSet)
	if len(tokens) < kgramSize {
		return fps
	}

	hashes := kgramHashes(tokens)
	if len(hashes) < windowSize {
		return fps
	}

	for i := 0; i+windowSize <= len(hashes); i++ {
		min := hashes[i]
		for _, h := range hashes[i+1 : i+windowSize] {
			// rightmost minimum, per the winnowing convention
			if h <= min {
				min = h
			}
		}
		fps[min] = struct{}{}
	}
	return fps
}

// kgramHashes hashes every contiguous k-gram with FNV-1a. Tokens are joined
// with a NUL separator so adjacent tokens cannot collide by concatenation.
func kgramHashes(tokens []string) []uint64 {
	hashes := make([]uint64, 0, len(tokens)-kgramSize+1)
	for i := 0; i+kgramSize <= len(tokens); i++ {
		h := fnv.New64a()
		for j, t := range tokens[i : i+kgramSize] {
			if j > 0 {
				h.Write([]byte{0})
			}
			h.Write([]byte(t))
		}
		hashes = append(hashes, h.Sum64())
	}
	return hashes
}

// fingerprintOverlap counts shared and total distinct fingerprints.
func fingerprintOverlap(a, b models.FingerprintSet) (common, union int) {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	for h := range small {
		if _, ok := large[h]; ok {
			common++
		}
	}
	return common, len(a) + len(b) - common
}

// Jaccard returns the set similarity of two fingerprint sets. Two empty
// sets are identical by convention; one empty set shares nothing.
func Jaccard(a, b models.FingerprintSet) float64 {
	common, union := fingerprintOverlap(a, b)
	if union == 0 {
		return 1.0
	}
	return float64(common) / float64(union)
}

// compareFingerprints runs the winnowing layer over one submission pair.
func compareFingerprints(an sourceAnalyzer, code1, code2 string) models.LayerResult {
	tokens1 := an.Tokenize(code1)
	tokens2 := an.Tokenize(code2)

	fp1 := Fingerprint(tokens1)
	fp2 := Fingerprint(tokens2)

	common, union := fingerprintOverlap(fp1, fp2)
	score := 1.0
	if union > 0 {
		score = float64(common) / float64(union)
	}

	return models.LayerResult{
		Layer:      models.LayerFingerprint,
		Score:      score,
		Confidence: confidenceFingerprint,
		Details: map[string]any{
			"token_count1":        len(tokens1),
			"token_count2":        len(tokens2),
			"fingerprint_count1":  len(fp1),
			"fingerprint_count2":  len(fp2),
			"common_fingerprints": common,
			"token_overlap":       tokenOverlap(tokens1, tokens2),
		},
	}
}

// tokenOverlap is the Jaccard similarity of the distinct token vocabularies,
// a coarse companion signal to the positional fingerprints.
func tokenOverlap(tokens1, tokens2 []string) float64 {
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}
	set1 := toSet(tokens1)
	set2 := toSet(tokens2)
	common := 0
	for t := range set1 {
		if _, ok := set2[t]; ok {
			common++
		}
	}
	union := len(set1) + len(set2) - common
	if union == 0 {
		return 0.0
	}
	return float64(common) / float64(union)
}
