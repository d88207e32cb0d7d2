package feature

import "github.com/rushteam/inscost/core"

// FieldEncoder 把一个表单字段写入特征向量。
// 所有实现只写自己负责的列，且永远不返回错误：缺失或非法值一律落到显式默认值。
type FieldEncoder interface {
	EncodeInto(in core.InputRecord, v Vector)
}

// OneHotEncoder One-Hot 编码（drop-first）
// 基准类别不占列，取值为基准或不在 Categories 中时整组保持 0。
// 列名为 Prefix + "_" + 类别。
type OneHotEncoder struct {
	Field      string   // 表单字段名
	Prefix     string   // 特征列前缀
	Categories []string // 非基准类别
}

// NewOneHotEncoder 创建 One-Hot 编码器
func NewOneHotEncoder(field, prefix string, categories ...string) *OneHotEncoder {
	return &OneHotEncoder{
		Field:      field,
		Prefix:     prefix,
		Categories: categories,
	}
}

// Columns 返回该组 one-hot 列名（有序）。
func (e *OneHotEncoder) Columns() []string {
	cols := make([]string, 0, len(e.Categories))
	for _, cat := range e.Categories {
		cols = append(cols, e.Prefix+"_"+cat)
	}
	return cols
}

// EncodeInto 编码单个字段
func (e *OneHotEncoder) EncodeInto(in core.InputRecord, v Vector) {
	val, ok := in.Text(e.Field)
	if !ok {
		return
	}
	for _, cat := range e.Categories {
		if cat == val {
			v.Set(e.Prefix+"_"+cat, 1.0)
			return
		}
	}
}

// OrdinalEncoder 有序编码
// 未知或缺失的类别使用 Default。
type OrdinalEncoder struct {
	Field   string
	Column  string
	Order   map[string]float64
	Default float64
}

// NewOrdinalEncoder 创建有序编码器
func NewOrdinalEncoder(field, column string, order map[string]float64, defaultVal float64) *OrdinalEncoder {
	return &OrdinalEncoder{
		Field:   field,
		Column:  column,
		Order:   order,
		Default: defaultVal,
	}
}

// EncodeInto 编码单个字段
func (e *OrdinalEncoder) EncodeInto(in core.InputRecord, v Vector) {
	val := e.Default
	if s, ok := in.Text(e.Field); ok {
		if o, ok := e.Order[s]; ok {
			val = o
		}
	}
	v.Set(e.Column, val)
}

// NumericEncoder 数值字段直接复制
type NumericEncoder struct {
	Field   string
	Column  string
	Default float64
}

// EncodeInto 编码单个字段
func (e *NumericEncoder) EncodeInto(in core.InputRecord, v Vector) {
	val, ok := in.Number(e.Field)
	if !ok {
		val = e.Default
	}
	v.Set(e.Column, val)
}

// RiskScoreEncoder 由病史计算 normalized_risk_score
type RiskScoreEncoder struct {
	Field  string
	Column string
}

// EncodeInto 编码单个字段
func (e *RiskScoreEncoder) EncodeInto(in core.InputRecord, v Vector) {
	history, _ := in.Text(e.Field)
	v.Set(e.Column, NormalizedRiskScore(history))
}

// InsurancePlanOrder 保险计划的序数编码
var InsurancePlanOrder = map[string]float64{
	"Bronze": 1,
	"Silver": 2,
	"Gold":   3,
}

// 缺失字段的默认值。
const (
	DefaultNumeric       = 0.0 // 数值字段缺失
	DefaultInsurancePlan = 1.0 // 未知/缺失的保险计划按 Bronze 处理
)

// Encoder 把 InputRecord 编码为未标准化的特征向量。
// 编码是纯函数：无随机性、无 I/O，可并发调用。
type Encoder struct {
	encoders []FieldEncoder
}

// NewEncoder 创建默认的保险特征编码器。
func NewEncoder() *Encoder {
	return &Encoder{
		encoders: []FieldEncoder{
			// 数值字段
			&NumericEncoder{Field: core.FieldAge, Column: ColAge, Default: DefaultNumeric},
			&NumericEncoder{Field: core.FieldDependants, Column: ColDependants, Default: DefaultNumeric},
			&NumericEncoder{Field: core.FieldIncomeLakhs, Column: ColIncomeLakhs, Default: DefaultNumeric},
			&NumericEncoder{Field: core.FieldGeneticalRisk, Column: ColGeneticalRisk, Default: DefaultNumeric},

			NewOrdinalEncoder(core.FieldInsurancePlan, ColInsurancePlan, InsurancePlanOrder, DefaultInsurancePlan),
			&RiskScoreEncoder{Field: core.FieldMedicalHistory, Column: ColNormalizedRiskScore},

			// 类别字段（Female / Married / Normal 等为基准类别）
			NewOneHotEncoder(core.FieldGender, "gender", "Male"),
			NewOneHotEncoder(core.FieldRegion, "region", "Northwest", "Southeast", "Southwest"),
			NewOneHotEncoder(core.FieldMaritalStatus, "marital_status", "Unmarried"),
			NewOneHotEncoder(core.FieldBMICategory, "bmi_category", "Obesity", "Overweight", "Underweight"),
			NewOneHotEncoder(core.FieldSmokingStatus, "smoking_status", "Occasional", "Regular"),
			NewOneHotEncoder(core.FieldEmploymentStatus, "employment_status", "Salaried", "Self-Employed"),
		},
	}
}

// Encode 编码输入记录。返回的向量总是包含全部 schema 列。
func (e *Encoder) Encode(in core.InputRecord) Vector {
	v := NewVector()
	for _, fe := range e.encoders {
		fe.EncodeInto(in, v)
	}
	return v
}

// OneHotGroups 返回各组 one-hot 列，用于校验每组最多一个 1。
func (e *Encoder) OneHotGroups() [][]string {
	var groups [][]string
	for _, fe := range e.encoders {
		if oh, ok := fe.(*OneHotEncoder); ok {
			groups = append(groups, oh.Columns())
		}
	}
	return groups
}
