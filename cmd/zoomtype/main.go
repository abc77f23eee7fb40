package main

import "github.com/yoanbernabeu/zoomtype/cli"

func main() {
	cli.Execute()
}
