package trend

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/xh-polaris/gopkg/util/log"
	"golang.org/x/net/context"

	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/mapper/message"
)

// 趋势窗口, 均为向前回溯的天数
const (
	shortWindowDays  = 7
	mediumWindowDays = 30
	longWindowDays   = 90
)

// 趋势判定阈值
const (
	intensityDelta = 2.0
	emotionDelta   = 0.3
	frequencyRatio = 0.5
)

// 趋势取值
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
	TrendImproving  = "improving"
	TrendDeclining  = "declining"

	VolatilityLow    = "low"
	VolatilityMedium = "medium"
	VolatilityHigh   = "high"
)

// negativeEmotions 固定的负面情绪集合
var negativeEmotions = map[string]bool{
	"sadness": true,
	"anxiety": true,
	"anger":   true,
	"fear":    true,
	"shame":   true,
	"guilt":   true,
}

// PeriodStatistics 单个窗口的情绪统计, 每次分析即时计算, 不落库
type PeriodStatistics struct {
	MessageCount        int                `json:"message_count"`
	AverageIntensity    float64            `json:"average_intensity"`
	EmotionDistribution map[string]float64 `json:"emotion_distribution"`
	NegativeEmotionRate float64            `json:"negative_emotion_rate"`
	HighIntensityRate   float64            `json:"high_intensity_rate"`
	Frequency           float64            `json:"frequency"`
}

// Flags 窗口间对比得到的定性趋势标记
type Flags struct {
	IntensityTrend string `json:"intensity_trend"`
	EmotionTrend   string `json:"emotion_trend"`
	FrequencyTrend string `json:"frequency_trend"`
	Volatility     string `json:"volatility"`
	RapidDecline   bool   `json:"rapid_decline"`
	SustainedLow   bool   `json:"sustained_low"`
	Isolation      bool   `json:"isolation"`
	Escalation     bool   `json:"escalation"`
}

// Result 一次趋势分析的完整输出
type Result struct {
	Short          *PeriodStatistics `json:"short"`
	Medium         *PeriodStatistics `json:"medium"`
	Long           *PeriodStatistics `json:"long"`
	Trends         Flags             `json:"trends"`
	RiskAdjustment float64           `json:"risk_adjustment"`
	Warnings       []string          `json:"warnings"`
}

// MessageStore 趋势分析只读消息库
type MessageStore interface {
	FindAnnotatedSince(ctx context.Context, userId string, since time.Time) ([]*message.Message, error)
}

// Analyzer 基于消息历史计算短/中/长期情绪趋势
type Analyzer struct {
	messages MessageStore
	clock    func() time.Time
}

func NewAnalyzer(messages MessageStore) *Analyzer {
	return &Analyzer{
		messages: messages,
		clock:    time.Now,
	}
}

// Analyze 计算三个窗口的统计并推导趋势标记
// 任何读取失败都返回中性结果, 趋势分析不允许阻塞消息处理
func (a *Analyzer) Analyze(ctx context.Context, userId string) *Result {
	now := a.clock()
	msgs, err := a.messages.FindAnnotatedSince(ctx, userId, now.AddDate(0, 0, -longWindowDays))
	if err != nil {
		log.CtxInfo(ctx, "[trend] read failed, fallback to neutral result, err=%v", err)
		return neutralResult()
	}

	short := computeStats(window(msgs, now, shortWindowDays), shortWindowDays)
	medium := computeStats(window(msgs, now, mediumWindowDays), mediumWindowDays)
	long := computeStats(msgs, longWindowDays)

	flags := deriveFlags(short, medium, long, window(msgs, now, shortWindowDays))
	adjustment := riskAdjustment(flags)

	return &Result{
		Short:          short,
		Medium:         medium,
		Long:           long,
		Trends:         flags,
		RiskAdjustment: adjustment,
		Warnings:       warnings(flags),
	}
}

func neutralResult() *Result {
	return &Result{
		Short:          emptyStats(),
		Medium:         emptyStats(),
		Long:           emptyStats(),
		Trends:         defaultFlags(),
		RiskAdjustment: 0,
		Warnings:       []string{},
	}
}

func emptyStats() *PeriodStatistics {
	return &PeriodStatistics{EmotionDistribution: map[string]float64{}}
}

func defaultFlags() Flags {
	return Flags{
		IntensityTrend: TrendStable,
		EmotionTrend:   TrendStable,
		FrequencyTrend: TrendStable,
		Volatility:     VolatilityLow,
	}
}

// window 截取最近days天的消息
func window(msgs []*message.Message, now time.Time, days int) []*message.Message {
	cutoff := now.AddDate(0, 0, -days)
	out := make([]*message.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.CreateTime.After(cutoff) {
			out = append(out, m)
		}
	}
	return out
}

// computeStats 计算单窗口统计
func computeStats(msgs []*message.Message, days int) *PeriodStatistics {
	s := emptyStats()
	if len(msgs) == 0 {
		return s
	}

	intensities := make([]float64, 0, len(msgs))
	negatives, high := 0, 0
	for _, m := range msgs {
		intensities = append(intensities, m.Intensity)
		s.EmotionDistribution[m.Emotion]++
		if negativeEmotions[m.Emotion] {
			negatives++
		}
		if m.Intensity >= consts.HighIntensity {
			high++
		}
	}

	n := float64(len(msgs))
	for emotion := range s.EmotionDistribution {
		s.EmotionDistribution[emotion] /= n
	}

	avg, _ := stats.Mean(intensities)
	s.MessageCount = len(msgs)
	s.AverageIntensity = avg
	s.NegativeEmotionRate = float64(negatives) / n
	s.HighIntensityRate = float64(high) / n
	s.Frequency = n / float64(days)
	return s
}

// deriveFlags 按固定阈值对比短期与中/长期窗口
func deriveFlags(short, medium, long *PeriodStatistics, shortMsgs []*message.Message) Flags {
	f := defaultFlags()
	if short.MessageCount == 0 {
		return f
	}

	// 强度趋势, 短期相对中期波动超过阈值
	if medium.MessageCount > 0 {
		switch {
		case short.AverageIntensity < medium.AverageIntensity-intensityDelta:
			f.IntensityTrend = TrendDecreasing
		case short.AverageIntensity > medium.AverageIntensity+intensityDelta:
			f.IntensityTrend = TrendIncreasing
			if short.AverageIntensity >= consts.HighIntensity {
				f.Escalation = true
			}
		}

		// 情绪趋势, 负面情绪占比的变化
		switch {
		case short.NegativeEmotionRate > medium.NegativeEmotionRate+emotionDelta:
			f.EmotionTrend = TrendDeclining
		case short.NegativeEmotionRate < medium.NegativeEmotionRate-emotionDelta:
			f.EmotionTrend = TrendImproving
		}

		// 频率趋势, 短期频率减半视为疏离信号
		switch {
		case short.Frequency < medium.Frequency*frequencyRatio:
			f.FrequencyTrend = TrendDecreasing
			f.Isolation = true
		case short.Frequency > medium.Frequency*1.5:
			f.FrequencyTrend = TrendIncreasing
		}

		// 持续低落: 短中期都低强度且负面占比高
		if short.AverageIntensity <= 4 && medium.AverageIntensity <= 4 && short.NegativeEmotionRate >= 0.6 {
			f.SustainedLow = true
		}
	}

	// 快速恶化需要长期基线
	if long.MessageCount > 0 && short.AverageIntensity < long.AverageIntensity-3 {
		f.RapidDecline = true
	}

	f.Volatility = volatility(shortMsgs)
	return f
}

// volatility 短期强度方差分档
func volatility(msgs []*message.Message) string {
	if len(msgs) < 2 {
		return VolatilityLow
	}
	intensities := make([]float64, 0, len(msgs))
	for _, m := range msgs {
		intensities = append(intensities, m.Intensity)
	}
	variance, err := stats.Variance(intensities)
	if err != nil {
		return VolatilityLow
	}
	switch {
	case variance > 4:
		return VolatilityHigh
	case variance > 2:
		return VolatilityMedium
	default:
		return VolatilityLow
	}
}

// riskAdjustment 趋势标记的加权风险调整
func riskAdjustment(f Flags) float64 {
	adj := 0.0
	if f.RapidDecline {
		adj += 2
	}
	if f.SustainedLow {
		adj += 1.5
	}
	if f.Volatility == VolatilityHigh {
		adj += 1
	}
	if f.Isolation {
		adj += 1.5
	}
	if f.Escalation {
		adj += 2
	}
	if f.EmotionTrend == TrendImproving {
		adj -= 0.5
	}
	if f.FrequencyTrend == TrendIncreasing && f.IntensityTrend != TrendDecreasing {
		adj -= 0.5
	}
	return adj
}

func warnings(f Flags) []string {
	out := make([]string, 0, 4)
	if f.RapidDecline {
		out = append(out, "rapid emotional decline against long-term baseline")
	}
	if f.SustainedLow {
		out = append(out, "sustained low emotional state")
	}
	if f.Isolation {
		out = append(out, "engagement dropping, possible isolation")
	}
	if f.Escalation {
		out = append(out, "escalating high-intensity emotions")
	}
	if f.Volatility == VolatilityHigh {
		out = append(out, "high emotional volatility")
	}
	return out
}
