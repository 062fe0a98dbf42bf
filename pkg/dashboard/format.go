package dashboard

import (
	"fmt"
	"strconv"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/monitor"
)

const (
	unknownNamespace   = "Unknown Namespace"
	unknownRollup      = "Unknown Rollup"
	unknownSigner      = "Unknown"
	unknownContentType = "unknown"
	unknownStack       = "-"

	signerPrefixLen = 16
	timeLayout      = "15:04:05"
)

// KB renders a byte count in kilobytes with two decimals, e.g. "1.50 KB".
func KB(bytes int64) string {
	return strconv.FormatFloat(float64(bytes)/1024, 'f', 2, 64) + " KB"
}

// FillPercent renders the block fill rate with one decimal. A missing rate
// renders as 0.
func FillPercent(b monitor.BlockSummary) string {
	pct, _ := b.FillPercent()
	return fmt.Sprintf("%.1f%%", pct)
}

func GasPercent(b monitor.BlockSummary) string {
	return fmt.Sprintf("%.1f%%", b.GasUtilization())
}

// Average renders the blobs-per-block average, or "n/a" before the first
// block has been processed.
func Average(s monitor.StatsSnapshot) string {
	if !s.HasAverage() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", s.AverageBlobsPerBlock)
}

func NamespaceLabel(b celenium.Blob) string {
	if b.Namespace == nil || b.Namespace.Name == "" {
		return unknownNamespace
	}
	return b.Namespace.Name
}

func RollupLabel(b celenium.Blob) string {
	if b.Rollup == nil || b.Rollup.Name == "" {
		return unknownRollup
	}
	return b.Rollup.Name
}

func ContentTypeLabel(b celenium.Blob) string {
	if b.ContentType == "" {
		return unknownContentType
	}
	return b.ContentType
}

// SignerLabel shortens the signer address to its first 16 characters.
func SignerLabel(b celenium.Blob) string {
	if b.Signer == nil || b.Signer.Hash == "" {
		return unknownSigner
	}
	h := b.Signer.Hash
	if len(h) > signerPrefixLen {
		h = h[:signerPrefixLen]
	}
	return h + "..."
}

func StackLabel(r celenium.Rollup) string {
	if r.Stack == "" {
		return unknownStack
	}
	return r.Stack
}
