package config

// Input 指定模拟器输入数据的配置项
// 说明：layout_file为空时按lot配置生成网格布局
type Input struct {
	LayoutFile string `yaml:"layout_file,omitempty"` // YAML布局文件路径
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
type ControlStep struct {
	Start      int32 `yaml:"start"`              // 开始步数
	Total      int32 `yaml:"total"`              // 总步数
	IntervalMs int64 `yaml:"interval_ms"`        // 每步的时间间隔（毫秒）
	Realtime   bool  `yaml:"realtime,omitempty"` // 是否按实际时间间隔推进
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
	Seed uint64      `yaml:"seed"` // 随机数种子
}

// Lot 网格停车场布局参数（米）
type Lot struct {
	Rows           int     `yaml:"rows"`            // 竖直路段行数
	Columns        int     `yaml:"columns"`         // 竖直通道数
	SegmentLength  float64 `yaml:"segment_length"`  // 竖直路段长度
	AisleSpacing   float64 `yaml:"aisle_spacing"`   // 相邻通道中心距，也是水平路段长度
	RoadWidth      float64 `yaml:"road_width"`      // 双车道道路宽度
	Margin         float64 `yaml:"margin"`          // 路网到场地边缘的距离
	SpaceWidth     float64 `yaml:"space_width"`     // 垂直车位沿道路方向的宽度
	SpaceDepth     float64 `yaml:"space_depth"`     // 垂直车位深度
	ParallelLength float64 `yaml:"parallel_length"` // 平行车位沿道路方向的长度
	ParallelDepth  float64 `yaml:"parallel_depth"`  // 平行车位深度
	SpaceClearance float64 `yaml:"space_clearance"` // 车位到路段端点的最小距离
	ParallelRows   []int   `yaml:"parallel_rows,omitempty"`
	EntranceColumn int     `yaml:"entrance_column"` // 入口所在通道序号
	ExitColumn     int     `yaml:"exit_column"`     // 出口所在通道序号
	EntranceDepth  float64 `yaml:"entrance_depth"`  // 入口区深度
}

// Vehicle 车辆参数
type Vehicle struct {
	Width               float64 `yaml:"width"`
	Length              float64 `yaml:"length"`
	Speed               float64 `yaml:"speed"`                 // 行驶速度（米/秒）
	MinStoppingDistance float64 `yaml:"min_stopping_distance"` // 最小制动距离
	TurningRunUp        float64 `yaml:"turning_run_up"`        // 转弯助跑距离
	Buffer              float64 `yaml:"buffer"`                // 机动区域外扩余量
	TurnSteps           int32   `yaml:"turn_steps"`            // 完成一次转弯所需步数
	ParkSteps           int32   `yaml:"park_steps"`            // 完成一次停车所需步数
	ReverseSteps        int32   `yaml:"reverse_steps"`         // 完成一次倒车所需步数
}

// Traffic 车流参数
type Traffic struct {
	Arrivals    []int32 `yaml:"arrivals,omitempty"` // 指定到达步
	ArrivalRate float64 `yaml:"arrival_rate"`       // 随机到达率（辆/秒），为0时不生成随机到达
	MaxVehicles int     `yaml:"max_vehicles"`       // 随机到达的车辆总数
	DwellMin    float64 `yaml:"dwell_min"`          // 停放时长下限（秒）
	DwellMax    float64 `yaml:"dwell_max"`          // 停放时长上限（秒）
	SpacePolicy string  `yaml:"space_policy"`       // first | random
}

// Output 输出配置
// 说明：uri为空时不写数据库
type Output struct {
	URI string `yaml:"uri,omitempty"` // MongoDB连接字符串
	DB  string `yaml:"db"`
	Col string `yaml:"col"`
}

// Monitor 调试HTTP服务配置
// 说明：listen为空时不启动
type Monitor struct {
	Listen string `yaml:"listen,omitempty"`
}

// Config YAML配置文件的根结构
type Config struct {
	Input   Input   `yaml:"input"`
	Control Control `yaml:"control"`
	Lot     Lot     `yaml:"lot"`
	Vehicle Vehicle `yaml:"vehicle"`
	Traffic Traffic `yaml:"traffic"`
	Output  Output  `yaml:"output"`
	Monitor Monitor `yaml:"monitor"`
}
