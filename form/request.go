package form

import "github.com/rushteam/inscost/core"

// Request 是预测接口的请求体，取值为表单上的原始取值。
// 数值字段为指针，缺失时不写入 InputRecord（由编码器按默认值处理）。
type Request struct {
	Age                *float64 `json:"age"`
	NumberOfDependants *float64 `json:"number_of_dependants"`
	IncomeLakhs        *float64 `json:"income_lakhs"`
	GeneticalRisk      *float64 `json:"genetical_risk"`
	InsurancePlan      string   `json:"insurance_plan"`
	EmploymentStatus   string   `json:"employment_status"`
	Gender             string   `json:"gender"`
	MaritalStatus      string   `json:"marital_status"`
	BMICategory        string   `json:"bmi_category"`
	SmokingStatus      string   `json:"smoking_status"`
	Region             string   `json:"region"`
	MedicalHistory     string   `json:"medical_history"`
}

// ToRecord 转换为以表单字段名为 key 的 InputRecord。空字符串视为缺失。
func (r *Request) ToRecord() core.InputRecord {
	in := core.InputRecord{}
	putNumber := func(field string, v *float64) {
		if v != nil {
			in[field] = *v
		}
	}
	putText := func(field, v string) {
		if v != "" {
			in[field] = v
		}
	}

	putNumber(core.FieldAge, r.Age)
	putNumber(core.FieldDependants, r.NumberOfDependants)
	putNumber(core.FieldIncomeLakhs, r.IncomeLakhs)
	putNumber(core.FieldGeneticalRisk, r.GeneticalRisk)
	putText(core.FieldInsurancePlan, r.InsurancePlan)
	putText(core.FieldEmploymentStatus, r.EmploymentStatus)
	putText(core.FieldGender, r.Gender)
	putText(core.FieldMaritalStatus, r.MaritalStatus)
	putText(core.FieldBMICategory, r.BMICategory)
	putText(core.FieldSmokingStatus, r.SmokingStatus)
	putText(core.FieldRegion, r.Region)
	putText(core.FieldMedicalHistory, r.MedicalHistory)
	return in
}
