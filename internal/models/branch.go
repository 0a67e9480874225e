package models

// Branch is one repository branch as listed by the GitHub API.
type Branch struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
	HeadSHA   string `json:"head_sha"`
}

// BranchComparison is the ahead/behind relation of a branch against the
// default branch. All fields are nil when the upstream compare call failed;
// callers must tolerate partial compare data.
type BranchComparison struct {
	AheadBy  *int    `json:"ahead_by"`
	BehindBy *int    `json:"behind_by"`
	Status   *string `json:"status"`
}

// BranchWithCompare decorates a branch with its comparison result.
type BranchWithCompare struct {
	Branch
	IsDefault bool             `json:"is_default"`
	Compare   BranchComparison `json:"compare"`
}
