package form

import (
	"fmt"
	"sort"

	"github.com/rushteam/inscost/core"
	"github.com/rushteam/inscost/pkg/dsl"
)

// DefaultRules 把表单专用取值改写为模型训练时使用的取值。
var DefaultRules = map[string]string{
	core.FieldSmokingStatus: `value in ["Occasional", "Regular"] ? value : "None"`,
	core.FieldBMICategory:   `value != "Normal" ? value : "None"`,
}

// Remapper 按字段对文本取值做 CEL 表达式改写。编译后只读，可并发使用。
type Remapper struct {
	fields []string
	rules  map[string]*dsl.Expr
}

// NewRemapper 编译改写规则（字段名 → 表达式）。rules 为 nil 时使用 DefaultRules。
func NewRemapper(rules map[string]string) (*Remapper, error) {
	if rules == nil {
		rules = DefaultRules
	}
	r := &Remapper{rules: make(map[string]*dsl.Expr, len(rules))}
	for field, expr := range rules {
		e, err := dsl.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("remap rule for %q: %w", field, err)
		}
		r.rules[field] = e
		r.fields = append(r.fields, field)
	}
	sort.Strings(r.fields)
	return r, nil
}

// Fields 返回配置了改写规则的字段（有序）
func (r *Remapper) Fields() []string {
	return append([]string(nil), r.fields...)
}

// Apply 返回改写后的新记录，不修改入参。缺失或非文本的字段保持不变。
func (r *Remapper) Apply(in core.InputRecord) (core.InputRecord, error) {
	out := in.Clone()
	for _, field := range r.fields {
		val, ok := in.Text(field)
		if !ok {
			continue
		}
		mapped, err := r.rules[field].Eval(val, map[string]any(in))
		if err != nil {
			return nil, fmt.Errorf("remap %q: %w", field, err)
		}
		out[field] = mapped
	}
	return out, nil
}
