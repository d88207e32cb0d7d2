package feature

import "fmt"

// 特征列名，顺序即模型训练时的输入顺序。
const (
	ColAge                    = "age"
	ColDependants             = "number_of_dependants"
	ColIncomeLakhs            = "income_lakhs"
	ColInsurancePlan          = "insurance_plan"
	ColGeneticalRisk          = "genetical_risk"
	ColNormalizedRiskScore    = "normalized_risk_score"
	ColGenderMale             = "gender_Male"
	ColRegionNorthwest        = "region_Northwest"
	ColRegionSoutheast        = "region_Southeast"
	ColRegionSouthwest        = "region_Southwest"
	ColMaritalUnmarried       = "marital_status_Unmarried"
	ColBMIObesity             = "bmi_category_Obesity"
	ColBMIOverweight          = "bmi_category_Overweight"
	ColBMIUnderweight         = "bmi_category_Underweight"
	ColSmokingOccasional      = "smoking_status_Occasional"
	ColSmokingRegular         = "smoking_status_Regular"
	ColEmploymentSalaried     = "employment_status_Salaried"
	ColEmploymentSelfEmployed = "employment_status_Self-Employed"
)

// PlaceholderColumn 只在标准化时临时出现：标准化器训练时多拟合了这一列，
// 它不属于模型输入 schema。
const PlaceholderColumn = "income_level"

// Columns 是固定的特征 schema（有序）。
var Columns = []string{
	ColAge,
	ColDependants,
	ColIncomeLakhs,
	ColInsurancePlan,
	ColGeneticalRisk,
	ColNormalizedRiskScore,
	ColGenderMale,
	ColRegionNorthwest,
	ColRegionSoutheast,
	ColRegionSouthwest,
	ColMaritalUnmarried,
	ColBMIObesity,
	ColBMIOverweight,
	ColBMIUnderweight,
	ColSmokingOccasional,
	ColSmokingRegular,
	ColEmploymentSalaried,
	ColEmploymentSelfEmployed,
}

// NumColumns 特征列数量
var NumColumns = len(Columns)

var columnIndex = func() map[string]int {
	idx := make(map[string]int, len(Columns))
	for i, c := range Columns {
		idx[c] = i
	}
	return idx
}()

// ColumnIndex 返回列在 schema 中的位置。
func ColumnIndex(col string) (int, bool) {
	i, ok := columnIndex[col]
	return i, ok
}

// Vector 是单行特征向量，长度与顺序恒等于 Columns。
type Vector []float64

// NewVector 创建全 0 的特征向量。
func NewVector() Vector {
	return make(Vector, NumColumns)
}

// Get 按列名读取；未知列返回 0。
func (v Vector) Get(col string) float64 {
	if i, ok := columnIndex[col]; ok && i < len(v) {
		return v[i]
	}
	return 0
}

// Set 按列名写入；未知列返回 false 且不修改向量。
func (v Vector) Set(col string, val float64) bool {
	i, ok := columnIndex[col]
	if !ok || i >= len(v) {
		return false
	}
	v[i] = val
	return true
}

// Clone 返回独立副本。
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Map 转为 列名 -> 值 的字典（用于日志与 explain 输出）。
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(Columns))
	for i, c := range Columns {
		if i < len(v) {
			m[c] = v[i]
		}
	}
	return m
}

// ValidateColumns 校验 names 与特征 schema 完全一致（数量与顺序）。
// 模型 artifact 加载时用它保证输入形状契约。
func ValidateColumns(names []string) error {
	if len(names) != NumColumns {
		return fmt.Errorf("feature count mismatch: expected %d, got %d", NumColumns, len(names))
	}
	for i, n := range names {
		if n != Columns[i] {
			return fmt.Errorf("feature %d mismatch: expected %q, got %q", i, Columns[i], n)
		}
	}
	return nil
}
