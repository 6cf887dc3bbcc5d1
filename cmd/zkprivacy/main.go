// zkprivacy 零知识隐私子系统命令行入口
package main

func main() {
	Execute()
}
