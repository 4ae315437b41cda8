package consts

// Step titles shown while a run progresses.
const (
	Step_ExchangeRate = "Collecting Exchange Rate Data"
	Step_News         = "Gathering Financial News"
	Step_Trends       = "Analyzing Market Trends"
	Step_Analysis     = "Processing Data Analysis"
	Step_Report       = "Generating Final Report"
)

const (
	State_Pending  = "pending"
	State_Running  = "in_progress"
	State_Finished = "completed"
	State_Failed   = "failed"
)

const (
	Status_Success = "success"
	Status_Error   = "error"
)
