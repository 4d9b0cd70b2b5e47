package terraingen

/** @brief The surface material of a voxel. Stored in the low 16 bits of a packed vertex. */
type Material uint16

const (
	MaterialVoid Material = iota
	MaterialStone
	MaterialGravelstone
	MaterialGraveldirt
	MaterialDirt
	MaterialGrass
	MaterialFlowergrass
	MaterialGreystone
	MaterialRedstone
	MaterialBlackstone
	MaterialGreySand
	MaterialSand
	MaterialRedsand
	MaterialMud
	MaterialLava
	MaterialIce
	MaterialSnow
)

var materialNames = [...]string{
	MaterialVoid:        "void",
	MaterialStone:       "stone",
	MaterialGravelstone: "gravelstone",
	MaterialGraveldirt:  "graveldirt",
	MaterialDirt:        "dirt",
	MaterialGrass:       "grass",
	MaterialFlowergrass: "flowergrass",
	MaterialGreystone:   "greystone",
	MaterialRedstone:    "redstone",
	MaterialBlackstone:  "blackstone",
	MaterialGreySand:    "greysand",
	MaterialSand:        "sand",
	MaterialRedsand:     "redsand",
	MaterialMud:         "mud",
	MaterialLava:        "lava",
	MaterialIce:         "ice",
	MaterialSnow:        "snow",
}

func (m Material) String() string {
	if int(m) < len(materialNames) {
		return materialNames[m]
	}
	return "unknown"
}
