package domain

import (
	"encoding/json"
	"strings"
)

// ExifInfo is the subset of server-extracted EXIF metadata used for comparison
type ExifInfo struct {
	FileSizeInByte  int64 `json:"fileSizeInByte"`
	ExifImageWidth  int   `json:"exifImageWidth"`
	ExifImageHeight int   `json:"exifImageHeight"`
}

// Asset is a read-only view of a photo or video held by the server
type Asset struct {
	ID               string    `json:"id"`
	DeviceAssetID    string    `json:"deviceAssetId"`
	Checksum         string    `json:"checksum"`
	OriginalFileName string    `json:"originalFileName"`
	ExifInfo         *ExifInfo `json:"exifInfo"` // nil when the server has no EXIF data

	// doc is the decoded JSON object the asset was built from
	doc map[string]any
}

// UnmarshalJSON decodes the typed fields and keeps the full document
// around so arbitrary field paths can be compared later.
func (a *Asset) UnmarshalJSON(data []byte) error {
	type plain Asset
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*a = Asset(p)
	a.doc = doc
	return nil
}

// Document returns the asset as a generic JSON object. Assets built in code
// (rather than decoded) get a document derived from their typed fields.
func (a Asset) Document() map[string]any {
	if a.doc != nil {
		return a.doc
	}

	doc := map[string]any{
		"id":               a.ID,
		"deviceAssetId":    a.DeviceAssetID,
		"checksum":         a.Checksum,
		"originalFileName": a.OriginalFileName,
		"exifInfo":         nil,
	}
	if a.ExifInfo != nil {
		// float64 mirrors what encoding/json produces for decoded numbers
		doc["exifInfo"] = map[string]any{
			"fileSizeInByte":  float64(a.ExifInfo.FileSizeInByte),
			"exifImageWidth":  float64(a.ExifInfo.ExifImageWidth),
			"exifImageHeight": float64(a.ExifInfo.ExifImageHeight),
		}
	}
	return doc
}

// FileSize returns the original file size in bytes, 0 if unknown
func (a Asset) FileSize() int64 {
	if a.ExifInfo == nil {
		return 0
	}
	return a.ExifInfo.FileSizeInByte
}

// Extension returns the lowercased extension of the device asset ID
// (the text after the last dot, or the whole ID when there is none).
func (a Asset) Extension() string {
	id := a.DeviceAssetID
	if i := strings.LastIndex(id, "."); i >= 0 {
		id = id[i+1:]
	}
	return strings.ToLower(id)
}

// DuplicateGroup is a server-identified cluster of possibly identical assets
type DuplicateGroup struct {
	DuplicateID string  `json:"duplicateId"`
	Assets      []Asset `json:"assets"`
}

// AssetIDs returns the IDs of all assets in the group, in received order
func (g DuplicateGroup) AssetIDs() []string {
	return AssetIDs(g.Assets)
}

// AssetIDs returns the IDs of the given assets in order
func AssetIDs(assets []Asset) []string {
	ids := make([]string, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	return ids
}

// Stack is a server-side grouping of related assets
type Stack struct {
	ID             string `json:"id"`
	PrimaryAssetID string `json:"primaryAssetId"`
}
