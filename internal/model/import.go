package model

// 导入/处理日志状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusCompleted  = "completed"
	ImportStatusFailed     = "failed"
)

// ImportLog 一次文件处理的记录
type ImportLog struct {
	ID              int64  `json:"id"`
	UserID          string `json:"user_id"`
	Filename        string `json:"filename"`
	Kind            string `json:"kind"`
	Status          string `json:"status"`
	TotalSheets     int    `json:"total_sheets"`
	ProcessedSheets int    `json:"processed_sheets"`
	MissingSheets   int    `json:"missing_sheets"`
	ErrorMessage    string `json:"error_message,omitempty"`
	CreatedAt       string `json:"created_at"`
	CompletedAt     string `json:"completed_at,omitempty"`
}

// 上传文件类型
const (
	UploadPL      = "pl"
	UploadBS      = "bs"
	UploadRec     = "rec"
	UploadMargin  = "mg"
	UploadFinance = "finance"
)

// UploadKinds 允许的上传类型
var UploadKinds = []string{UploadPL, UploadBS, UploadRec, UploadMargin, UploadFinance}

// Upload 用户最近一次上传的某类文件
type Upload struct {
	UserID    string `json:"user_id"`
	Kind      string `json:"kind"`
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}
