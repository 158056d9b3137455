package immich

// deleteAssetsRequest is the body of DELETE /api/assets
type deleteAssetsRequest struct {
	IDs []string `json:"ids"`
}

// updateAssetsRequest is the body of PUT /api/assets. A nil DuplicateID
// is sent as null, which detaches the assets from their duplicate group.
type updateAssetsRequest struct {
	DuplicateID *string  `json:"duplicateId"`
	IDs         []string `json:"ids"`
}

// createStackRequest is the body of POST /api/stacks
type createStackRequest struct {
	AssetIDs []string `json:"assetIds"`
}

// stackResponse is the subset of the created stack we read back
type stackResponse struct {
	ID             string `json:"id"`
	PrimaryAssetID string `json:"primaryAssetId"`
}
