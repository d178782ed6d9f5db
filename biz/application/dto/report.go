package dto

type (
	// ReportReq 面板查询的通用请求, Days为回溯窗口
	ReportReq struct {
		UserId string `json:"user_id" query:"user_id"`
		Days   int    `json:"days" query:"days"`
	}

	// SummaryResp 危机概览
	SummaryResp struct {
		Code                   int                `json:"code"`
		Msg                    string             `json:"msg"`
		Period                 string             `json:"period"`
		TotalCrises            int                `json:"total_crises"`
		ByLevel                map[string]int     `json:"by_level"`
		ResolutionRate         float64            `json:"resolution_rate"`
		AlertsSent             int                `json:"alerts_sent"`
		FollowUpCompletionRate float64            `json:"follow_up_completion_rate"`
		EmotionDistribution    map[string]float64 `json:"emotion_distribution"`
	}

	// MonthBucket 按月聚合的危机数
	MonthBucket struct {
		Month string `json:"month"`
		Count int    `json:"count"`
	}

	// TrendsResp 危机趋势
	TrendsResp struct {
		Code    int            `json:"code"`
		Msg     string         `json:"msg"`
		Period  string         `json:"period"`
		Months  []*MonthBucket `json:"months"`
		ByLevel map[string]int `json:"by_level"`
	}

	// ContactReliability 单个联系人的送达可靠性
	ContactReliability struct {
		ContactId  string `json:"contact_id"`
		Name       string `json:"name"`
		Successful int    `json:"successful"`
		Failed     int    `json:"failed"`
	}

	// AlertStatsResp 告警统计
	AlertStatsResp struct {
		Code        int                   `json:"code"`
		Msg         string                `json:"msg"`
		Period      string                `json:"period"`
		TotalAlerts int                   `json:"total_alerts"`
		Sent        int                   `json:"sent"`
		Partial     int                   `json:"partial"`
		Failed      int                   `json:"failed"`
		PerContact  []*ContactReliability `json:"per_contact"`
	}

	// ListEventsReq 危机事件列表请求
	ListEventsReq struct {
		UserId string `json:"user_id" query:"user_id"`
		Paging
	}

	// CrisisEventView 对外暴露的危机事件视图
	CrisisEventView struct {
		ID             string   `json:"id"`
		RiskLevel      string   `json:"risk_level"`
		DetectedAt     int64    `json:"detected_at"`
		ResolvedAt     int64    `json:"resolved_at,omitempty"`
		Outcome        string   `json:"outcome"`
		ContentPreview string   `json:"content_preview"`
		Emotion        string   `json:"emotion"`
		RiskScore      float64  `json:"risk_score"`
		Factors        []string `json:"factors"`
	}

	// ListEventsResp 危机事件列表响应
	ListEventsResp struct {
		Code   int                `json:"code"`
		Msg    string             `json:"msg"`
		Events []*CrisisEventView `json:"events"`
		Total  int64              `json:"total"`
	}
)
