package main

import "github.com/jfmyers9/toastify/cmd"

func main() {
	cmd.Execute()
}
