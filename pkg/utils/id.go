package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRunID gera o id curto de uma execução do relatório, usado no log e no histórico
func GenerateRunID() (string, error) {
	return gonanoid.Generate(characters, 12)
}
