package feature

import "strings"

// RiskNormalizer 是风险分的固定分母：两两组合中可达到的最大值
// heart disease (8) + diabetes / high blood pressure (6)。
// 三种及以上疾病组合时结果会大于 1，这是训练时就存在的口径，保持不变。
const RiskNormalizer = 14.0

// MedicalHistorySeparator 分隔多种病史。
const MedicalHistorySeparator = " & "

// RiskScores 病史风险表（key 为小写）。表外的病史计 0 分。
var RiskScores = map[string]float64{
	"diabetes":            6,
	"heart disease":       8,
	"high blood pressure": 6,
	"thyroid":             5,
	"no disease":          0,
	"none":                0,
}

// NormalizedRiskScore 计算病史的归一化风险分。
//
//	NormalizedRiskScore("Diabetes & Heart disease") == 1.0
//	NormalizedRiskScore("") == 0.0
func NormalizedRiskScore(medicalHistory string) float64 {
	if medicalHistory == "" {
		return 0.0
	}
	total := 0.0
	for _, disease := range strings.Split(strings.ToLower(medicalHistory), MedicalHistorySeparator) {
		total += RiskScores[disease]
	}
	return total / RiskNormalizer
}
