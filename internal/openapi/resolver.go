package openapi

import (
	"fmt"
	"strings"

	"github.com/studiowebux/restsynth/internal/types"
)

// FindOperation returns the operation whose operationId matches id,
// ignoring case. Paths are searched in traversal order and the first match
// wins.
func FindOperation(doc *Document, id string) (OperationRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return OperationRef{}, fmt.Errorf("%w: operationId is required", types.ErrOperationNotFound)
	}

	for _, ref := range doc.Operations() {
		if strings.EqualFold(ref.Operation.OperationID, id) {
			return ref, nil
		}
	}

	return OperationRef{}, fmt.Errorf("%w: %s", types.ErrOperationNotFound, id)
}
