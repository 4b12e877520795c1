package main

import (
	"fmt"
	"os"

	"github.com/123kaze/cq/internal/atm/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		fmt.Fprintf(os.Stderr, "发生错误: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\n程序结束。")
}
