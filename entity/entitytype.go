package entity

import "git.fiblab.net/general/common/v2/geometry"

// IVehicle 路径规划、占用计算与交通协调所消费的车辆视图
// 说明：核心模块只读取车辆几何与状态，不负责车辆生命周期
type IVehicle interface {
	ID() int32
	Position() geometry.Point
	Heading() Direction
	Width() float64
	Length() float64
	Status() Status
	CollisionBoxes() []CollisionBox // 车身、当前机动的缓存占用区域以及需要保持空闲的区域
}

// IVehicleSource 当前在路上活动的车辆（离场车辆在前，入场车辆在后）
type IVehicleSource interface {
	ActiveVehicles() []IVehicle
}
