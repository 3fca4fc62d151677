package service

import (
	"fmt"
	"strings"

	"pokedex-api/internal/models"
)

func entityKey(id models.Identifier) string {
	return "entity:" + id.String()
}

func listKey(page, limit int) string {
	return fmt.Sprintf("list:%d:%d", page, limit)
}

// keyEscaper keeps "-" unambiguous as the search key separator.
var keyEscaper = strings.NewReplacer("%", "%25", "-", "%2D")

func searchKey(name, typ string, limit int) string {
	return fmt.Sprintf("search:%s-%s-%d", keyEscaper.Replace(name), keyEscaper.Replace(typ), limit)
}
