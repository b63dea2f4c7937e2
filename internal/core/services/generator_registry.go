package services

import (
	"fmt"

	portssvc "github.com/glsuite/gl_posting_app/internal/core/ports/services"
)

// GeneratorRegistry maps a document-type discriminator (the document's table
// name) to its fact generation strategy. Populated once at process start;
// lookups at posting time are static, never reflective.
type GeneratorRegistry struct {
	generators map[string]portssvc.FactGenerator
}

// NewGeneratorRegistry creates an empty registry.
func NewGeneratorRegistry() *GeneratorRegistry {
	return &GeneratorRegistry{generators: make(map[string]portssvc.FactGenerator)}
}

// Register binds a table name to a generator. Registering the same table
// twice is a wiring bug and panics at startup rather than at posting time.
func (r *GeneratorRegistry) Register(tableName string, generator portssvc.FactGenerator) {
	if _, exists := r.generators[tableName]; exists {
		panic(fmt.Sprintf("fact generator already registered for table %s", tableName))
	}
	r.generators[tableName] = generator
}

// ForTable returns the generator for a table name.
func (r *GeneratorRegistry) ForTable(tableName string) (portssvc.FactGenerator, bool) {
	generator, ok := r.generators[tableName]
	return generator, ok
}
