package main

import "foodgram/cmd/foodgram-admin/command"

func main() {
	command.Execute()
}
