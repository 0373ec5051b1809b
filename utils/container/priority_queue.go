package container

import "container/heap"

// item 优先队列中单个元素
type item[T any] struct {
	Value    T       // 元素的值
	Priority float64 // 优先级（越小越优先）
	seq      uint64  // 入队序号，优先级相同时先入队者优先
	index    int     // 项在堆中的索引，由heap.Interface方法维护
}

// priorityQueue 实现heap.Interface的内部最小堆
type priorityQueue[T any] []*item[T]

func (pq priorityQueue[T]) Len() int { return len(pq) }

// Less 比较两个元素的出队先后
// 功能：实现heap.Interface接口
// 参数：i,j-要比较的两个元素索引
// 返回：true表示i先于j出队
// 说明：先比较优先级，相同则比较入队序号，保证相同优先级的元素按入队顺序出队
func (pq priorityQueue[T]) Less(i, j int) bool {
	if pq[i].Priority != pq[j].Priority {
		return pq[i].Priority < pq[j].Priority
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue[T]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	n := len(*pq)
	item := x.(*item[T])
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue[T]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // 避免内存泄漏
	item.index = -1 // 为了安全起见
	*pq = old[0 : n-1]
	return item
}

// PriorityQueue 稳定的最小优先队列
// 功能：按优先级从小到大出队，优先级相同时按入队顺序出队
// 说明：到达计划表用它按到达步排序车辆
type PriorityQueue[T any] struct {
	queue priorityQueue[T]
	seq   uint64
}

// NewPriorityQueue 创建优先队列
// 功能：初始化一个空的稳定优先队列
// 返回：新创建的优先队列指针
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{queue: make(priorityQueue[T], 0)}
}

// Len 获取当前队列长度
// 返回：队列中元素的数量
func (q *PriorityQueue[T]) Len() int {
	return len(q.queue)
}

// First 查看队首元素
// 功能：返回优先级数值最小的元素，不移除
// 返回：队首元素的值与优先级
// 说明：仅在已调用Heapify或只使用HeapPush/HeapPop时有效；队列为空时panic
func (q *PriorityQueue[T]) First() (T, float64) {
	return q.queue[0].Value, q.queue[0].Priority
}

// Push 加入元素（简单添加）
// 功能：追加元素并记录入队序号，不维护堆结构
// 参数：value-元素值，priority-元素优先级
// 说明：批量加入后需调用Heapify重新构建堆
func (q *PriorityQueue[T]) Push(value T, priority float64) {
	q.queue = append(q.queue, q.newItem(value, priority))
}

// Heapify 重新构建堆
// 功能：将Push批量加入的元素整理为有效的最小堆
// 说明：入队序号在Push时已确定，重建堆不改变相同优先级元素的出队顺序
func (q *PriorityQueue[T]) Heapify() {
	heap.Init(&q.queue)
}

// HeapPush 加入元素（堆操作）
// 功能：加入元素并维护堆结构
// 参数：value-元素值，priority-元素优先级
func (q *PriorityQueue[T]) HeapPush(value T, priority float64) {
	heap.Push(&q.queue, q.newItem(value, priority))
}

// HeapPop 弹出元素（堆操作）
// 功能：移除并返回优先级数值最小的元素，优先级相同时先入队者先出
// 返回：value-元素值，priority-元素优先级
// 说明：队列为空时panic
func (q *PriorityQueue[T]) HeapPop() (value T, priority float64) {
	item := heap.Pop(&q.queue).(*item[T])
	return item.Value, item.Priority
}

// newItem 创建带入队序号的元素
func (q *PriorityQueue[T]) newItem(value T, priority float64) *item[T] {
	q.seq++
	return &item[T]{Value: value, Priority: priority, seq: q.seq}
}
