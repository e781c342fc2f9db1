package memory_test

import (
	"testing"

	"github.com/graceolivia/rhythms/internal/storage"
	"github.com/graceolivia/rhythms/internal/storage/compliance"
	"github.com/graceolivia/rhythms/internal/storage/memory"
)

func TestStoreCompliance(t *testing.T) {
	compliance.Run(t, func(t *testing.T) storage.Store {
		return memory.NewStore()
	})
}
