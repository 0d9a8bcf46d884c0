package assets

import "time"

// ===== Requests =====

type CreateAssetRequest struct {
	AssetTag string  `json:"asset_tag" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"` // 省略時 available
	Loanable *bool   `json:"loanable,omitempty"`
	Serial   *string `json:"serial,omitempty"`
	Location *string `json:"location,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type UpdateAssetRequest struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"category,omitempty"`
	Status   *string `json:"status,omitempty"`
	Loanable *bool   `json:"loanable,omitempty"`
	Serial   *string `json:"serial,omitempty"`
	Location *string `json:"location,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// ===== Responses =====

type AssetResponse struct {
	AssetTag  string     `json:"asset_tag"`
	Name      string     `json:"name"`
	Category  *string    `json:"category,omitempty"`
	Status    string     `json:"status"`
	Loanable  bool       `json:"loanable"`
	Serial    *string    `json:"serial,omitempty"`
	Location  *string    `json:"location,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ===== Listing helpers =====

type Page struct {
	Limit  int
	Offset int
	Order  string // "asc" or "desc"
}

type AssetSearchQuery struct {
	Status   *string
	Category *string
	Loanable *bool
	Location *string
	Keyword  *string // name 部分一致
}
