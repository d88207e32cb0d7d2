package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		// 当前字段的原始取值
		cel.Variable("value", cel.StringType),
		// 整条表单记录，用于跨字段判断
		cel.Variable("record", cel.MapType(cel.StringType, cel.DynType)),
		// 表单数值可能是 int 或 double
		cel.CrossTypeNumericComparisons(true),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Expr 是编译后的字段改写表达式，使用 CEL (Common Expression Language) 语法。
// 编译一次，可被多个 goroutine 并发求值。
//
// 可用变量：
//   - value：当前字段的字符串取值
//   - record：整条表单记录（map）
//
// 示例：
//   - `value in ["Occasional", "Regular"] ? value : "None"`
//   - `value != "Normal" ? value : "None"`
//   - `value == "" && record["Age"] >= 60 ? "Retired" : value`
type Expr struct {
	src string
	prg cel.Program
}

// Compile 编译表达式，表达式必须返回字符串。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env error: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.StringType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return string, got %s", t)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{src: expr, prg: prg}, nil
}

// MustCompile 同 Compile，编译失败时 panic（用于包级默认表达式）
func MustCompile(expr string) *Expr {
	e, err := Compile(expr)
	if err != nil {
		panic(fmt.Sprintf("dsl: %q: %v", expr, err))
	}
	return e
}

// String 返回表达式源码
func (e *Expr) String() string { return e.src }

// Eval 对单个字段求值，返回改写后的取值。
func (e *Expr) Eval(value string, record map[string]any) (string, error) {
	if record == nil {
		record = map[string]any{}
	}
	out, _, err := e.prg.Eval(map[string]any{
		"value":  value,
		"record": record,
	})
	if err != nil {
		return "", fmt.Errorf("eval error: %w", err)
	}
	s, ok := out.Value().(string)
	if !ok {
		return "", fmt.Errorf("expression must return string, got %T", out.Value())
	}
	return s, nil
}
