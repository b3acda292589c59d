package main

import "github.com/nikogura/suture-assessor/cmd"

func main() {
	cmd.Execute()
}
