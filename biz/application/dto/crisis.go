package dto

type (
	// HandleMessageReq 一条新用户消息及其外部分析结果
	HandleMessageReq struct {
		UserId    string `json:"user_id"`
		MessageId string `json:"message_id"`
		Content   string `json:"content"`
		Timestamp int64  `json:"timestamp"`

		// 情绪分析结果, 由外部情绪识别服务给出
		Emotion   string  `json:"emotion"`
		Intensity float64 `json:"intensity"`

		// 语境分析结果
		IntentType       string  `json:"intent_type"`
		IntentConfidence float64 `json:"intent_confidence"`
	}

	// HandleMessageResp 风险处理结果
	HandleMessageResp struct {
		Code          int    `json:"code"`
		Msg           string `json:"msg"`
		IsCrisis      bool   `json:"is_crisis"`
		RiskLevel     string `json:"risk_level"`
		CrisisEventId string `json:"crisis_event_id,omitempty"`
	}

	// TestAlertReq 测试告警请求, 用于校验联系人配置
	TestAlertReq struct {
		UserId string `json:"user_id"`
	}

	// TestAlertResp 测试告警结果
	TestAlertResp struct {
		Code   int          `json:"code"`
		Msg    string       `json:"msg"`
		Result *AlertResult `json:"result"`
	}

	// AlertResult 一次告警分发的整体结果
	AlertResult struct {
		Sent                bool             `json:"sent"`
		Reason              string           `json:"reason,omitempty"`
		TotalContacts       int              `json:"total_contacts"`
		SuccessfulSends     int              `json:"successful_sends"`
		SuccessfulEmails    int              `json:"successful_emails"`
		SuccessfulMessaging int              `json:"successful_messaging"`
		Contacts            []*ContactResult `json:"contacts"`
	}

	// ContactResult 单个联系人的分发结果
	ContactResult struct {
		ContactId string `json:"contact_id"`
		Name      string `json:"name"`
		Status    string `json:"status"`
		Email     string `json:"email,omitempty"`
		Messaging string `json:"messaging,omitempty"`
	}

	// LiveNotice 推送到在线通道的危机通知
	LiveNotice struct {
		Type      string `json:"type"`
		RiskLevel string `json:"risk_level"`
		Timestamp int64  `json:"timestamp"`
	}
)
