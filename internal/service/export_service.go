package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avatarforge/api/internal/geometry"
	"github.com/avatarforge/api/internal/model"
)

// ExportService packages the active character for download. The real
// encoder is an external collaborator; this service validates the
// state, derives the geometry, and produces the package manifest.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// Triangle estimates per complexity level, for the manifest.
var triangleCounts = map[model.ExportComplexity]int{
	model.ComplexitySimple:   3180,
	model.ComplexityStandard: 12452,
	model.ComplexityComplex:  49808,
}

// Export validates the session's working state and returns the package
// manifest. Out-of-range state is rejected here; the encoder only ever
// sees a valid, in-range character.
func (s *ExportService) Export(sessions *EditorService, sessionID string, req *model.ExportRequest) (*model.ExportResponse, error) {
	sess, err := sessions.Session(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Working()
	if violations := model.Validate(state); len(violations) > 0 {
		return nil, fmt.Errorf("character state invalid: %s", violations[0].Message)
	}

	desc := geometry.BuildHumanoid(state)

	exportID := uuid.New().String()
	return &model.ExportResponse{
		PackageURL:    fmt.Sprintf("https://cdn.avatarforge.io/exports/%s.zip", exportID),
		FileType:      req.FileType,
		TextureSize:   req.TextureSize,
		Complexity:    req.Complexity,
		TriangleCount: triangleCounts[req.Complexity],
		Primitives:    len(desc.Primitives),
		Files:         packageFiles(req.FileType, req.TextureSize),
		ExpiresAt:     time.Now().Add(1 * time.Hour),
	}, nil
}

func packageFiles(fileType model.ExportFileType, textureSize int) []string {
	texture := fmt.Sprintf("textures/skin_%d.png", textureSize)

	switch fileType {
	case model.FileTypeGLB:
		return []string{"model.glb", "model.gltf", "model.bin", texture}
	case model.FileTypeOBJ:
		return []string{"model.obj", "model.mtl", texture}
	case model.FileTypeFBX:
		return []string{"model.fbx", texture}
	}
	return []string{"model." + strings.ToLower(string(fileType)), texture}
}
