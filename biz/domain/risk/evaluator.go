package risk

import (
	"github.com/Mar-cere/Anto-sub003/biz/domain/trend"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/config"
	"github.com/Mar-cere/Anto-sub003/biz/infrastructure/consts"
)

// IntentCrisis 语境分析给出的显性危机意图
const (
	IntentCrisis        = "CRISIS"
	crisisConfidenceMin = 0.9
)

// 评分权重, 阈值本身来自配置
const (
	intensityWeight      = 0.6
	negativeEmotionBonus = 1.0
	crisisIntentBonus    = 2.5
	recentCrisisBonus    = 0.5
	maxScore             = 10.0
)

// negativeEmotions 与趋势分析保持同一负面情绪集合
var negativeEmotions = map[string]bool{
	"sadness": true,
	"anxiety": true,
	"anger":   true,
	"fear":    true,
	"shame":   true,
	"guilt":   true,
}

// Input 评估所需的全部信号, 评估本身是纯函数
type Input struct {
	// 当前消息的情绪分析
	Emotion   string
	Intensity float64

	// 语境分析
	IntentType       string
	IntentConfidence float64

	// 趋势分析
	Trends          trend.Flags
	TrendAdjustment float64

	// 危机历史
	TotalCrises  int64
	RecentCrises int64
}

// Assessment 一次风险评估的结果
type Assessment struct {
	Level             Level
	Score             float64
	IsCrisis          bool
	Factors           []string
	ProtectiveFactors []string
}

// Evaluator 把情绪/语境/趋势信号折算成离散风险等级
type Evaluator struct {
	conf config.Crisis
}

func NewEvaluator(c *config.Config) *Evaluator {
	return &Evaluator{conf: c.Crisis}
}

// Evaluate 计算风险评分并映射到等级
// 每个升级信号只会增加评分, 保护因素只会减少评分, 等级随评分单调
func (e *Evaluator) Evaluate(in *Input) *Assessment {
	factors := make([]string, 0, 6)
	protective := make([]string, 0, 2)

	score := in.Intensity * intensityWeight
	if negativeEmotions[in.Emotion] {
		score += negativeEmotionBonus
		factors = append(factors, "negative dominant emotion: "+in.Emotion)
	}
	if in.Intensity >= consts.HighIntensity {
		factors = append(factors, "high emotional intensity")
	}

	// 趋势调整已经是带符号的加权和
	score += in.TrendAdjustment
	appendTrendFactors(&factors, &protective, in.Trends)

	crisisIntent := in.IntentType == IntentCrisis && in.IntentConfidence >= crisisConfidenceMin
	if crisisIntent {
		score += crisisIntentBonus
		factors = append(factors, "explicit crisis intent")
	}

	if in.RecentCrises > 0 {
		score += recentCrisisBonus
		factors = append(factors, "recent crisis history")
	}

	score = clamp(score, 0, maxScore)
	level := e.levelFor(score)

	// 高置信度危机意图视为事件级别, 但LOW不升级
	isCrisis := level >= Medium || (crisisIntent && level != Low)
	if isCrisis && level < Medium {
		level = Medium
	}

	return &Assessment{
		Level:             level,
		Score:             score,
		IsCrisis:          isCrisis,
		Factors:           factors,
		ProtectiveFactors: protective,
	}
}

// levelFor 把评分映射到等级, 阈值是可调配置
func (e *Evaluator) levelFor(score float64) Level {
	warning, medium, high := e.conf.WarningScore, e.conf.MediumScore, e.conf.HighScore
	if warning <= 0 {
		warning = 3
	}
	if medium <= 0 {
		medium = 5
	}
	if high <= 0 {
		high = 7
	}
	switch {
	case score >= high:
		return High
	case score >= medium:
		return Medium
	case score >= warning:
		return Warning
	default:
		return Low
	}
}

func appendTrendFactors(factors, protective *[]string, f trend.Flags) {
	if f.RapidDecline {
		*factors = append(*factors, "rapid emotional decline")
	}
	if f.SustainedLow {
		*factors = append(*factors, "sustained low mood")
	}
	if f.Isolation {
		*factors = append(*factors, "dropping engagement")
	}
	if f.Escalation {
		*factors = append(*factors, "escalating intensity")
	}
	if f.Volatility == trend.VolatilityHigh {
		*factors = append(*factors, "high volatility")
	}
	if f.EmotionTrend == trend.TrendImproving {
		*protective = append(*protective, "improving emotional trend")
	}
	if f.FrequencyTrend == trend.TrendIncreasing && f.IntensityTrend != trend.TrendDecreasing {
		*protective = append(*protective, "increasing engagement")
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
