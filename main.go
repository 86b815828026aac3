package main

import "trf5-crawler/cmd"

func main() {
	cmd.Execute()
}
