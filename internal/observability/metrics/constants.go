package metrics

// Operations recorded by the engine and the batch runner.
const (
	OpPredict   = "predict"
	OpRefine    = "refine"
	OpTopology  = "topology_only"
	OpBatch     = "batch"
	OpLoad      = "load_input"
	OpSave      = "save"
	OpPublish   = "publish"
	OpWriteFile = "write_output"
)

// Pipeline stages, used as the stage label of the duration histogram.
const (
	StageResidue    = "residue_scores"
	StageSmooth     = "smooth"
	StageArbitrate  = "arbitrate"
	StageRefine     = "refine"
	StageSides      = "sides"
	StageConfidence = "confidence"
)

// Operation outcomes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Oracle models.
const (
	ModelResidue  = "residue"
	ModelSegment  = "segment"
	ModelTopology = "topology"
)
