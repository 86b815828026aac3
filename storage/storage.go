package storage

// 对应数据库中的行
type DataCell struct {
	Data map[string]interface{}
}

func (d *DataCell) GetTableName() string {
	return d.GetTaskName()
}

func (d *DataCell) GetTaskName() string {
	name, _ := d.Data["Task"].(string)
	return name
}

func (d *DataCell) GetRuleName() string {
	name, _ := d.Data["Rule"].(string)
	return name
}

// 规则输出的字段集合
func (d *DataCell) GetItem() map[string]interface{} {
	item, _ := d.Data["Data"].(map[string]interface{})
	return item
}

func (d *DataCell) GetURL() string {
	u, _ := d.Data["Url"].(string)
	return u
}

func (d *DataCell) GetTime() string {
	t, _ := d.Data["Time"].(string)
	return t
}

// 存储接口
type Storage interface {
	Save(datas ...*DataCell) error
}

// 带缓存的存储在任务结束时需要刷新
type Flusher interface {
	Flush() error
}
