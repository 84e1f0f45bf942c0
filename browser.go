package main

import (
	"fmt"
	"os/exec"
	"runtime"
)

func openBrowser(addr string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", addr)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", addr)
	default:
		cmd = exec.Command("xdg-open", addr)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", addr, err)
	}
	return nil
}
