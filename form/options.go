// Package form 是调用方一侧的表单层：可选项、请求体与取值改写。
// 取值改写（如 "No Smoking" → "None"）在这里完成，编码器本身不做任何改写。
package form

import "github.com/rushteam/inscost/core"

// Range 数值字段的表单输入范围（仅供前端展示，服务端不校验）
type Range struct {
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
	Step float64 `json:"step" yaml:"step"`
}

// Options 表单可选项
type Options struct {
	Categorical map[string][]string `json:"categorical"`
	Numeric     map[string]Range    `json:"numeric"`
}

// DefaultOptions 返回表单默认可选项。
// 注意 "No Smoking" 与 "Normal" 是表单取值，送入模型前由 Remapper 改写为 "None"。
func DefaultOptions() Options {
	return Options{
		Categorical: map[string][]string{
			core.FieldGender:           {"Male", "Female"},
			core.FieldMaritalStatus:    {"Unmarried", "Married"},
			core.FieldBMICategory:      {"Normal", "Obesity", "Overweight", "Underweight"},
			core.FieldSmokingStatus:    {"No Smoking", "Occasional", "Regular"},
			core.FieldEmploymentStatus: {"Salaried", "Self-Employed"},
			core.FieldRegion:           {"Northwest", "Southeast", "Southwest"},
			core.FieldMedicalHistory: {
				"No Disease",
				"Diabetes",
				"High blood pressure",
				"Diabetes & High blood pressure",
				"Thyroid",
				"Heart disease",
				"High blood pressure & Heart disease",
				"Diabetes & Thyroid",
				"Diabetes & Heart disease",
			},
			core.FieldInsurancePlan: {"Bronze", "Silver", "Gold"},
		},
		Numeric: map[string]Range{
			core.FieldAge:           {Min: 18, Max: 100, Step: 1},
			core.FieldDependants:    {Min: 0, Max: 20, Step: 1},
			core.FieldIncomeLakhs:   {Min: 0, Max: 200, Step: 1},
			core.FieldGeneticalRisk: {Min: 0, Max: 5, Step: 1},
		},
	}
}
