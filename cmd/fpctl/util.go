package main

import "os"

func writeTextFile(path, text string) error {
	return os.WriteFile(path, []byte(text+"\n"), 0644)
}
