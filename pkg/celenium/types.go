package celenium

import "time"

// Block is a single entry of the /block listing.
type Block struct {
	Height uint64      `json:"height"`
	Time   time.Time   `json:"time"`
	Stats  *BlockStats `json:"stats,omitempty"`
}

// BlockStats holds the derived metrics served by /block/{height}/stats.
// FillRate is reported as a decimal string. Celenium serves a fraction; the
// unit is configurable downstream for deployments that serve a percentage.
type BlockStats struct {
	BlobsCount    int64  `json:"blobs_count"`
	BlobsSize     int64  `json:"blobs_size"`
	BlockTime     int64  `json:"block_time"`
	BytesInBlock  int64  `json:"bytes_in_block"`
	Commissions   string `json:"commissions"`
	EventsCount   int64  `json:"events_count"`
	Fee           string `json:"fee"`
	FillRate      string `json:"fill_rate"`
	GasLimit      int64  `json:"gas_limit"`
	GasUsed       int64  `json:"gas_used"`
	InflationRate string `json:"inflation_rate"`
	Rewards       string `json:"rewards"`
	SquareSize    int64  `json:"square_size"`
	SupplyChange  string `json:"supply_change"`
	TxCount       int64  `json:"tx_count"`
}

type Namespace struct {
	ID          uint64 `json:"id,omitempty"`
	NamespaceID string `json:"namespace_id"`
	Name        string `json:"name,omitempty"`
	Version     int    `json:"version,omitempty"`
}

type RollupRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Celestial struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

type Signer struct {
	Hash       string     `json:"hash"`
	Celestials *Celestial `json:"celestials,omitempty"`
}

// Blob is one data payload embedded in a block.
type Blob struct {
	Namespace   *Namespace `json:"namespace,omitempty"`
	Size        int64      `json:"size"`
	Commitment  string     `json:"commitment"`
	Height      uint64     `json:"height"`
	Time        time.Time  `json:"time"`
	ContentType string     `json:"content_type,omitempty"`
	Rollup      *RollupRef `json:"rollup,omitempty"`
	Signer      *Signer    `json:"signer,omitempty"`
}

// NamespaceID returns the blob's namespace identifier, or "" when the blob
// carries no namespace.
func (b Blob) NamespaceID() string {
	if b.Namespace == nil {
		return ""
	}
	return b.Namespace.NamespaceID
}

// Rollup is a registered data-consuming application.
type Rollup struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Logo        string `json:"logo,omitempty"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
	Stack       string `json:"stack,omitempty"`
}
