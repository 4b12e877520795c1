package main

import (
	"fmt"
	"os"

	"github.com/123kaze/cq/internal/fraccalc/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		fmt.Fprintf(os.Stderr, "发生错误: %v\n", err)
		os.Exit(1)
	}
}
