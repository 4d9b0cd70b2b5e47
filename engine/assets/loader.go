package assets

// Loader produces SPIR-V words for a shader name such as "voxels.vert".
type Loader interface {
	Load(name string) ([]uint32, error)
}
