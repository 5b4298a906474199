package service

import (
	"fmt"
	"io"
	"strings"

	"yatube/app/repositories"

	"go.uber.org/zap"
)

// Console is where commands print results and read confirmations.
type Console struct {
	In  io.Reader
	Out io.Writer
}

func (c Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

// confirm asks a yes/no question; anything but y/Y is a no
func (c Console) confirm(question string) bool {
	c.printf("%s [y/N] ", question)
	var response string
	fmt.Fscanln(c.In, &response)
	response = strings.TrimSpace(response)
	return response == "y" || response == "Y"
}

// openStore opens the database at path, logging through logger
func openStore(path string, logger *zap.Logger) (*repositories.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	return repositories.Open(path, logger)
}
