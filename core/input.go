package core

import "github.com/rushteam/inscost/pkg/conv"

// 表单字段名。InputRecord 的 key 必须与之完全一致，其他 key 会被忽略。
const (
	FieldAge              = "Age"
	FieldDependants       = "Number of Dependants"
	FieldIncomeLakhs      = "Income in Lakhs"
	FieldGeneticalRisk    = "Genetical Risk"
	FieldInsurancePlan    = "Insurance Plan"
	FieldEmploymentStatus = "Employment Status"
	FieldGender           = "Gender"
	FieldMaritalStatus    = "Marital Status"
	FieldBMICategory      = "BMI Category"
	FieldSmokingStatus    = "Smoking Status"
	FieldRegion           = "Region"
	FieldMedicalHistory   = "Medical History"
)

// Fields 按表单顺序列出全部输入字段。
var Fields = []string{
	FieldAge,
	FieldDependants,
	FieldIncomeLakhs,
	FieldGeneticalRisk,
	FieldInsurancePlan,
	FieldEmploymentStatus,
	FieldGender,
	FieldMaritalStatus,
	FieldBMICategory,
	FieldSmokingStatus,
	FieldRegion,
	FieldMedicalHistory,
}

// InputRecord 是单次预测的输入：表单字段名 -> 原始值（数字或枚举字符串）。
// 由调用方构建，预测过程中只读。
type InputRecord map[string]any

// Number 读取数值字段；缺失或类型不符时返回 (0, false)。
func (r InputRecord) Number(field string) (float64, bool) {
	if r == nil {
		return 0, false
	}
	return conv.ToFloat64(r[field])
}

// Text 读取枚举字段；缺失或非字符串时返回 ("", false)。
func (r InputRecord) Text(field string) (string, bool) {
	if r == nil {
		return "", false
	}
	return conv.ToString(r[field])
}

// Clone 返回浅拷贝，调用方可以在副本上做字段替换而不影响原记录。
func (r InputRecord) Clone() InputRecord {
	out := make(InputRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
