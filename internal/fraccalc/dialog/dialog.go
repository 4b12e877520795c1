// Package dialog is the calculator's two-level REPL: a top menu choosing
// between expression evaluation and list sorting, with `#` returning from
// either submenu.
package dialog

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/123kaze/cq/internal/fraccalc/fraction"
	"github.com/123kaze/cq/internal/fraccalc/parser"
)

const backSentinel = "#"

type Dialog struct {
	in  *bufio.Scanner
	out io.Writer
}

func New(in io.Reader, out io.Writer) *Dialog {
	return &Dialog{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run loops over the top menu until stdin closes.
func (d *Dialog) Run() error {
	for {
		d.printf("请选择功能：(键入1或者2)\n")
		d.printf("1.分数计算\n")
		d.printf("2.分数排序\n")
		d.printf("——\n")

		choice, ok := d.readLine()
		if !ok {
			return d.in.Err()
		}

		switch choice {
		case "1":
			if !d.calculateLoop() {
				return d.in.Err()
			}
		case "2":
			if !d.sortLoop() {
				return d.in.Err()
			}
		default:
			d.printf("输入错误，请重新选择！\n")
		}
	}
}

// calculateLoop evaluates expressions until `#`. Returns false when input
// ran out.
func (d *Dialog) calculateLoop() bool {
	for {
		d.printf("请输入分数计算式(如:1/2+1/3),输入#返回上一层目录:\n")
		line, ok := d.readLine()
		if !ok {
			return false
		}
		if line == backSentinel {
			return true
		}

		x, op, y, err := parser.ParseExpression(line)
		if err != nil {
			d.printf("输入错误!\n")
			continue
		}

		result, err := evaluate(x, op, y)
		if err != nil {
			zap.L().Debug("rejected expression", zap.String("line", line), zap.Error(err))
			d.printf("输入错误!\n")
			continue
		}
		d.printf("%s\n", result)
	}
}

// sortLoop sorts fraction lists until `#`. Returns false when input ran out.
func (d *Dialog) sortLoop() bool {
	for {
		d.printf("输入一组分数,用英文逗号隔开,如需由小到大排序用<结尾，由大到小排序用>结尾(如1/2,1/4,3/5<),输入#返回上层目录：\n")
		line, ok := d.readLine()
		if !ok {
			return false
		}
		if line == backSentinel {
			return true
		}

		fracs, order, err := parser.ParseList(line)
		if err != nil {
			d.printf("输入错误!\n")
			continue
		}
		parser.SortFractions(fracs, order)
		d.printf("%s\n", parser.RenderList(fracs))
	}
}

func evaluate(x fraction.Fraction, op byte, y fraction.Fraction) (fraction.Fraction, error) {
	switch op {
	case '+':
		return x.Add(y), nil
	case '-':
		return x.Sub(y), nil
	case '*':
		return x.Mul(y), nil
	default:
		return x.Div(y)
	}
}

func (d *Dialog) readLine() (string, bool) {
	if !d.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(d.in.Text()), true
}

func (d *Dialog) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}
