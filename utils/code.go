package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var mu sync.Mutex
var seededRand *rand.Rand

func init() {
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateTaskCode builds a readable task code from the project code, e.g.
// "HT-104927". Uniqueness is enforced by the column index; collisions retry
// at the caller.
func GenerateTaskCode(projectCode string) string {
	mu.Lock()
	defer mu.Unlock()

	prefix := strings.ToUpper(projectCode)
	if prefix == "" {
		prefix = "TSK"
	}
	nanoPart := time.Now().UnixNano() % 100000
	randPart := seededRand.Intn(9)
	return fmt.Sprintf("%s-%05d%d", prefix, nanoPart, randPart)
}

// GenerateProjectCode derives a short uppercase code from a project name.
func GenerateProjectCode(name string) string {
	mu.Lock()
	defer mu.Unlock()

	var initials []byte
	for _, word := range strings.Fields(name) {
		c := word[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c >= 'A' && c <= 'Z' {
			initials = append(initials, c)
		}
		if len(initials) == 3 {
			break
		}
	}
	if len(initials) == 0 {
		initials = []byte("PRJ")
	}
	return fmt.Sprintf("%s%03d", string(initials), seededRand.Intn(1000))
}
