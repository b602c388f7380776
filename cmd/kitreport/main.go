package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "runs":
			runsCmd(os.Args[2:])
			return
		case "rankings":
			rankingsCmd(os.Args[2:])
			return
		case "help", "-h", "--help":
			fmt.Fprintln(os.Stderr, "usage: kitreport [flags] | kitreport runs -index db | kitreport rankings -index db -run id -kit subtype")
			return
		}
	}
	reportCmd(os.Args[1:])
}
